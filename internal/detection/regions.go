package detection

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/model"
)

// colorRegion describes one HSV-mask based area detector.
type colorRegion struct {
	name       string
	idPrefix   string
	kind       model.ElementType
	typeProp   string
	hsv        config.HSVRange
	minArea    float64
	confidence float64
}

func detectColorRegions(src gocv.Mat, r colorRegion) Outcome {
	return run(r.name, func() ([]model.MapElement, error) {
		mask, err := hsvMask(src, r.hsv)
		if err != nil {
			return nil, err
		}
		defer mask.Close()

		var elements []model.MapElement
		externalContours(mask, func(c contour, _ gocv.PointVector) {
			if c.Area <= r.minArea {
				return
			}
			g, err := polygonFrom(c.Points)
			if err != nil {
				return
			}
			elements = append(elements, model.NewMapElement(
				fmt.Sprintf("%s_%d", r.idPrefix, c.Index),
				r.kind,
				g,
				map[string]any{"type": r.typeProp},
				r.confidence,
			))
		})
		return elements, nil
	})
}

// DetectWater returns closed polygons around blue regions larger than
// WaterMinArea.
func DetectWater(src gocv.Mat, p Params) Outcome {
	return detectColorRegions(src, colorRegion{
		name:       DetectorWater,
		idPrefix:   "water",
		kind:       model.ElementWater,
		typeProp:   "water_body",
		hsv:        p.Water,
		minArea:    p.WaterMinArea,
		confidence: p.WaterConfidence,
	})
}

// DetectGreenAreas returns closed polygons around green regions larger than
// GreenMinArea.
func DetectGreenAreas(src gocv.Mat, p Params) Outcome {
	return detectColorRegions(src, colorRegion{
		name:       DetectorGreen,
		idPrefix:   "green",
		kind:       model.ElementGreenArea,
		typeProp:   "green_area",
		hsv:        p.Green,
		minArea:    p.GreenMinArea,
		confidence: p.GreenConfidence,
	})
}
