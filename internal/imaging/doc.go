// Package imaging provides the raster side of the map pipeline: loading map
// sources, converting between Go images and OpenCV matrices, preprocessing,
// and drawing results back onto the map.
//
// All coordinates are 0-based pixels with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward.
//
// # Sources
//
// ImageCache decodes PNG, JPEG, GIF, TIFF and BMP files (with EXIF
// auto-orientation) and rasterizes the first page of PDF maps. Every load
// failure is reported as *ImageLoadError so callers can tell "cannot read the
// map" apart from downstream failures.
//
// # OpenCV Interop
//
// ToMat produces a 3-channel BGR gocv.Mat, the layout every detector expects.
// Mats hold native memory: whoever receives one must Close it.
//
// # Preprocessing
//
// Preprocess applies an edge-preserving bilateral filter followed by CLAHE on
// the Lab lightness channel. It is deliberately infallible: on any failure
// it logs a warning and hands back a copy of its input.
//
// # Color
//
// HSV values use OpenCV's 8-bit scale (H 0-180, S and V 0-255) so that sampled
// colors can be compared directly with the water and green area mask ranges.
package imaging
