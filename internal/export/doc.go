// Package export writes processing results to files.
//
// Supported formats:
//   - geojson: a FeatureCollection of the detected elements in pixel
//     coordinates, each feature tagged with element_type, element_id and
//     confidence
//   - png: the map with every element outlined in its type color
//   - world: a PNG copy of the map with an ESRI world file (.pgw) and a
//     .crs sidecar naming the coordinate reference system; only offered
//     when georeferencing took the homography path
package export
