// Package geocode turns place-like map labels into geographic coordinates.
package geocode

import (
	"context"
	"fmt"
)

// Place is the best match for a query, in WGS84 degrees.
type Place struct {
	Lon         float64 `json:"lon"`
	Lat         float64 `json:"lat"`
	DisplayName string  `json:"display_name,omitempty"`
}

// Geocoder resolves one free-text query to at most one place.
//
// A nil Place with a nil error means the service had no match. Each call
// is bounded by the implementation's own timeout.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Place, error)
}

// GeocodeError reports a failed lookup. Callers treat it as "no match".
type GeocodeError struct {
	Query string
	Err   error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("geocoding %q failed: %v", e.Query, e.Err)
}

func (e *GeocodeError) Unwrap() error { return e.Err }
