package detection

import (
	"fmt"

	"github.com/ironsheep/map-georef/internal/model"
)

// Detector names used in errors and diagnostics.
const (
	DetectorScale     = "scale"
	DetectorLegend    = "legend"
	DetectorRoads     = "roads"
	DetectorWater     = "water"
	DetectorBuildings = "buildings"
	DetectorGreen     = "green_areas"
)

// DetectorError reports a failure inside a single detector.
type DetectorError struct {
	Detector string
	Err      error
}

func (e *DetectorError) Error() string {
	return fmt.Sprintf("%s detector failed: %v", e.Detector, e.Err)
}

func (e *DetectorError) Unwrap() error { return e.Err }

// Outcome is the result of one feature detector: Elements on success, Err on
// failure. Elements is nil whenever Err is set.
type Outcome struct {
	Detector string
	Elements []model.MapElement
	Err      error
}

// run executes fn and converts both returned errors and panics into a
// *DetectorError.
func run(name string, fn func() ([]model.MapElement, error)) (out Outcome) {
	out.Detector = name
	defer func() {
		if r := recover(); r != nil {
			out.Elements = nil
			out.Err = &DetectorError{Detector: name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	elements, err := fn()
	if err != nil {
		out.Err = &DetectorError{Detector: name, Err: err}
		return out
	}
	if elements == nil {
		elements = []model.MapElement{}
	}
	out.Elements = elements
	return out
}

// guard runs fn, recovering a panic into a *DetectorError.
func guard(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DetectorError{Detector: name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := fn(); err != nil {
		return &DetectorError{Detector: name, Err: err}
	}
	return nil
}
