package georef

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/crs"
	"github.com/ironsheep/map-georef/internal/geocode"
	"github.com/ironsheep/map-georef/internal/model"
)

// fakeGeocoder answers from a fixed table and records every query
type fakeGeocoder struct {
	places  map[string]geocode.Place
	fail    map[string]bool
	queries []string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) (*geocode.Place, error) {
	f.queries = append(f.queries, query)
	if f.fail[query] {
		return nil, &geocode.GeocodeError{Query: query, Err: errors.New("connection refused")}
	}
	p, ok := f.places[query]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// shiftTransformer offsets points, standing in for a real reprojection
type shiftTransformer struct {
	dx, dy float64
}

func (s shiftTransformer) Transform(src, dst string, p model.Point) (model.Point, error) {
	if crs.Same(src, dst) {
		return p, nil
	}
	return model.Point{X: p.X + s.dx, Y: p.Y + s.dy}, nil
}

// testConfig works in WGS84 throughout so no reprojection is needed
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.CRS.Working = crs.WGS84
	cfg.CRS.DefaultTarget = crs.WGS84
	cfg.Homography.ReprojectionThreshold = 0.001
	return cfg
}

// textElement builds an OCR-like label box
func textElement(t *testing.T, i int, text string, x, y, w, h float64, conf float64) model.MapElement {
	t.Helper()
	g, err := model.NewPolygon(
		model.Point{X: x, Y: y},
		model.Point{X: x + w, Y: y},
		model.Point{X: x + w, Y: y + h},
		model.Point{X: x, Y: y + h},
	)
	if err != nil {
		t.Fatalf("NewPolygon failed: %v", err)
	}
	props := map[string]any{"text": text, "confidence": conf, "font_size": h}
	return model.NewMapElement(fmt.Sprintf("text_%d", i), model.ElementText, g, props, conf)
}

// pixelToLonLat is the ground truth mapping of the synthetic map
func pixelToLonLat(p model.Point) model.Point {
	return model.Point{X: 17.2 + p.X*0.0001, Y: 49.7 - p.Y*0.0001}
}

// labelledMap returns text elements and a geocoder that resolves each one
// to the ground truth position of its centroid
func labelledMap(t *testing.T, labels []string) ([]model.MapElement, *fakeGeocoder) {
	t.Helper()
	positions := [][2]float64{{40, 30}, {700, 60}, {650, 520}, {80, 480}, {360, 260}, {500, 150}}
	geo := &fakeGeocoder{places: map[string]geocode.Place{}}
	var elements []model.MapElement
	for i, label := range labels {
		pos := positions[i%len(positions)]
		el := textElement(t, i, label, pos[0], pos[1], 60, 14, 0.9)
		c, _ := el.Geometry.Centroid()
		ll := pixelToLonLat(c)
		geo.places[label] = geocode.Place{Lon: ll.X, Lat: ll.Y}
		elements = append(elements, el)
	}
	return elements, geo
}

func controlPointsFrom(h model.TransformMatrix, pixels ...model.Point) []model.ControlPoint {
	points := make([]model.ControlPoint, 0, len(pixels))
	for i, p := range pixels {
		g, _ := h.Apply(p)
		points = append(points, model.ControlPoint{Image: p, Geo: g, Text: fmt.Sprintf("cp%d", i), Confidence: 0.9})
	}
	return points
}
