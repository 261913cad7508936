// Package model defines the value types that flow through the map analysis
// and georeferencing pipeline.
//
// All types are plain data: they carry no references to image buffers or
// native resources and can be serialized to JSON (and msgpack) as-is. Optional
// quantities are pointers so that "not determined" stays distinguishable from
// a zero value.
//
// # Coordinate Conventions
//
// Image coordinates are pixels with the origin at the top-left corner, X to
// the right and Y down. Geographic coordinates are expressed in the CRS named
// alongside them (EPSG identifiers such as "EPSG:5514"), with X as easting or
// longitude and Y as northing or latitude.
package model
