// Package detection finds cartographic features in a preprocessed map image
// using classical computer vision (OpenCV through gocv).
//
// # Detectors
//
//   - Scale bar: the longest near-horizontal Hough segment
//   - Legend: MSER region density
//   - Roads: probabilistic Hough segments over the Canny edge map
//   - Water: blue HSV mask, external contours above a minimum area
//   - Buildings: Canny contours in an area band, approximated to polygons
//   - Green areas: green HSV mask, external contours above a minimum area
//
// # Inputs
//
// Every detector takes a 3-channel BGR gocv.Mat and only reads it, so the
// detectors may run concurrently over the same Mat.
//
// # Failure Isolation
//
// Feature detectors return an Outcome: either a list of elements or a
// *DetectorError. A panic raised inside OpenCV bindings is recovered and
// converted to a DetectorError as well. The Segmenter reduces failed outcomes
// to empty lists plus a diagnostic, so one broken detector never hides the
// results of the others.
//
// # Confidence Scores
//
// Feature confidences are fixed per detector (roads 0.7, water 0.8,
// buildings 0.6, green areas 0.7). Scale confidence grows with the line
// length and saturates at ScaleSaturationPx; legend confidence grows with the
// region count and saturates at LegendSaturation.
package detection
