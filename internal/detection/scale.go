package detection

import (
	"sort"

	"gocv.io/x/gocv"

	"github.com/ironsheep/map-georef/internal/model"
)

// DetectScale looks for a scale bar: the longest near-horizontal segment
// found by the Hough transform.
//
// The scale ratio and unit are not read from the map; ScaleValue and Unit
// stay nil. Failures are reported through the Error field with
// Detected=false.
func DetectScale(src gocv.Mat, p Params) model.ScaleInfo {
	var info model.ScaleInfo

	err := guard(DetectorScale, func() error {
		edges, err := edgeMap(src, p)
		if err != nil {
			return err
		}
		defer edges.Close()

		var candidates []Segment
		for _, s := range houghSegments(edges, p.ScaleHough) {
			if s.NearHorizontal(p.ScaleAngleTolerance) {
				candidates = append(candidates, s)
			}
		}
		if len(candidates) == 0 {
			return nil
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Length > candidates[j].Length
		})
		best := candidates[0]

		info.Detected = true
		info.LineLengthPx = best.Length
		info.Line = []model.Point{best.Start, best.End}
		info.Confidence = ScaleConfidence(best.Length, p.ScaleSaturationPx)
		return nil
	})
	if err != nil {
		return model.ScaleInfo{Error: err.Error()}
	}
	return info
}

// ScaleConfidence is min(length/saturation, 1), and 0 for non-positive
// lengths.
func ScaleConfidence(length, saturation float64) float64 {
	if length <= 0 || saturation <= 0 {
		return 0
	}
	return model.ClampUnit(length / saturation)
}
