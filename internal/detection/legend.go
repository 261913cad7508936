package detection

import (
	"gocv.io/x/gocv"

	"github.com/ironsheep/map-georef/internal/model"
)

// DetectLegend estimates whether the map carries a legend from the density
// of maximally stable extremal regions. It does not localize the legend, so
// BBox stays nil.
func DetectLegend(src gocv.Mat, p Params) model.LegendInfo {
	var info model.LegendInfo

	err := guard(DetectorLegend, func() error {
		if err := checkInput(src); err != nil {
			return err
		}

		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

		mser := gocv.NewMSER()
		defer mser.Close()

		n := len(mser.Detect(gray))
		info.RegionCount = n
		info.Detected = n > 0
		info.Confidence = LegendConfidence(n, p.LegendSaturation)
		return nil
	})
	if err != nil {
		return model.LegendInfo{Error: err.Error()}
	}
	return info
}

// LegendConfidence is min(regions/saturation, 1).
func LegendConfidence(regions int, saturation float64) float64 {
	if regions <= 0 || saturation <= 0 {
		return 0
	}
	return model.ClampUnit(float64(regions) / saturation)
}
