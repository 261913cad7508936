package georef

import (
	"context"
	"log"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/crs"
	"github.com/ironsheep/map-georef/internal/geocode"
	"github.com/ironsheep/map-georef/internal/model"
)

// Resolver derives control points from OCR text elements.
//
// Candidates are filtered by confidence and the gazetteer, geocoded one at
// a time, and reprojected from WGS84 into the working CRS. A candidate that
// fails at any step is dropped without retry.
type Resolver struct {
	gazetteer     *geocode.Gazetteer
	geocoder      geocode.Geocoder
	transformer   crs.Transformer
	workingCRS    string
	minConfidence float64
}

// NewResolver wires a resolver from the geocoding and CRS config sections.
func NewResolver(cfg *config.Config, geocoder geocode.Geocoder, transformer crs.Transformer) *Resolver {
	return &Resolver{
		gazetteer:     geocode.NewGazetteer(cfg.Geocoding.Gazetteer, cfg.Geocoding.MinTextLength),
		geocoder:      geocoder,
		transformer:   transformer,
		workingCRS:    cfg.CRS.Working,
		minConfidence: cfg.Geocoding.MinTextConfidence,
	}
}

// WorkingCRS returns the CRS control point geo coordinates are expressed in.
func (r *Resolver) WorkingCRS() string {
	return r.workingCRS
}

// Candidates returns the text elements worth geocoding, in input order.
func (r *Resolver) Candidates(elements []model.MapElement) []model.MapElement {
	var out []model.MapElement
	for _, el := range elements {
		if el.Type != model.ElementText || !(el.Confidence > r.minConfidence) {
			continue
		}
		text, ok := el.Text()
		if !ok || !r.gazetteer.Relevant(text) {
			continue
		}
		out = append(out, el)
	}
	return out
}

// Resolve geocodes every candidate sequentially and pairs the text centroid
// with the reprojected place. The result is never nil.
func (r *Resolver) Resolve(ctx context.Context, elements []model.MapElement) []model.ControlPoint {
	points := []model.ControlPoint{}
	for _, el := range r.Candidates(elements) {
		if ctx.Err() != nil {
			break
		}
		if cp, ok := r.resolveOne(ctx, el); ok {
			points = append(points, cp)
		}
	}
	if config.Debug() {
		log.Printf("resolved %d control points", len(points))
	}
	return points
}

func (r *Resolver) resolveOne(ctx context.Context, el model.MapElement) (model.ControlPoint, bool) {
	text, _ := el.Text()

	center, ok := el.Geometry.Centroid()
	if !ok {
		return model.ControlPoint{}, false
	}

	place, err := r.geocoder.Geocode(ctx, text)
	if err != nil {
		log.Printf("warning: %v", err)
		return model.ControlPoint{}, false
	}
	if place == nil {
		if config.Debug() {
			log.Printf("no geocoding match for %q", text)
		}
		return model.ControlPoint{}, false
	}

	geo, err := r.transformer.Transform(crs.WGS84, r.workingCRS, model.Point{X: place.Lon, Y: place.Lat})
	if err != nil {
		log.Printf("warning: %v", err)
		return model.ControlPoint{}, false
	}

	return model.ControlPoint{
		Image:      center,
		Geo:        geo,
		Text:       text,
		Confidence: el.Confidence,
		Address:    place.DisplayName,
	}, true
}
