package detection

import (
	"log"

	"gocv.io/x/gocv"

	"github.com/ironsheep/map-georef/internal/model"
)

// FeatureDetector is the signature shared by the feature sub-detectors.
type FeatureDetector func(src gocv.Mat, p Params) Outcome

// FeatureDetectors lists the sub-detectors in the order their elements
// appear in an analysis result.
var FeatureDetectors = []FeatureDetector{
	DetectRoads,
	DetectWater,
	DetectBuildings,
	DetectGreenAreas,
}

// Segmenter runs every feature sub-detector over one image.
type Segmenter struct {
	params Params
}

// NewSegmenter creates a segmenter with fixed thresholds.
func NewSegmenter(p Params) *Segmenter {
	return &Segmenter{params: p}
}

// Params returns the thresholds the segmenter was built with.
func (s *Segmenter) Params() Params {
	return s.params
}

// Segment runs the sub-detectors sequentially and reduces their outcomes.
func (s *Segmenter) Segment(src gocv.Mat) ([]model.MapElement, []model.Diagnostic) {
	outcomes := make([]Outcome, len(FeatureDetectors))
	for i, detect := range FeatureDetectors {
		outcomes[i] = detect(src, s.params)
	}
	return Reduce(outcomes)
}

// Reduce concatenates successful outcomes in order. Each failed outcome
// contributes no elements and one diagnostic, and is logged as a warning.
func Reduce(outcomes []Outcome) ([]model.MapElement, []model.Diagnostic) {
	elements := []model.MapElement{}
	var diagnostics []model.Diagnostic
	for _, o := range outcomes {
		if o.Err != nil {
			log.Printf("warning: %v", o.Err)
			diagnostics = append(diagnostics, model.Diagnostic{Step: o.Detector, Error: o.Err.Error()})
			continue
		}
		elements = append(elements, o.Elements...)
	}
	return elements, diagnostics
}
