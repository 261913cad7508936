// Package georef maps image pixels to geographic coordinates.
//
// The precise path derives control points from recognized place names,
// fits a planar homography with RANSAC, scores it by RMSE against the
// control points, and projects the image corners to a bounding box and a
// north-up affine raster transform.
//
// With fewer than four control points the Georeferencer falls back to a
// configured approximate extent and tags the result "simple_estimation".
// The only hard failure is a homography that cannot be computed from four
// or more points, reported as *GeoreferencingError.
package georef
