package georef

import (
	"errors"
	"fmt"
)

// ErrInsufficientControlPoints marks a homography request with too few
// points. The Georeferencer routes it to the fallback estimate.
var ErrInsufficientControlPoints = errors.New("insufficient control points")

// InsufficientControlPointsError carries how many points were available.
type InsufficientControlPointsError struct {
	Have int
	Need int
}

func (e *InsufficientControlPointsError) Error() string {
	return fmt.Sprintf("insufficient control points: have %d, need at least %d", e.Have, e.Need)
}

func (e *InsufficientControlPointsError) Is(target error) bool {
	return target == ErrInsufficientControlPoints
}

// HomographyError reports that no usable transform could be fitted.
type HomographyError struct {
	Reason string
}

func (e *HomographyError) Error() string {
	return "homography computation failed: " + e.Reason
}

// GeoreferencingError wraps an unrecoverable failure of the georeferencing
// stage.
type GeoreferencingError struct {
	Err error
}

func (e *GeoreferencingError) Error() string {
	return fmt.Sprintf("georeferencing failed: %v", e.Err)
}

func (e *GeoreferencingError) Unwrap() error { return e.Err }
