package model

import "fmt"

// ElementType tags the kind of cartographic feature a MapElement represents.
type ElementType string

const (
	ElementRoad      ElementType = "road"
	ElementWater     ElementType = "water"
	ElementBuilding  ElementType = "building"
	ElementText      ElementType = "text"
	ElementGreenArea ElementType = "green_area"
	ElementLegend    ElementType = "legend"
	ElementScale     ElementType = "scale"
)

// Valid reports whether t is one of the known element types.
func (t ElementType) Valid() bool {
	switch t {
	case ElementRoad, ElementWater, ElementBuilding, ElementText,
		ElementGreenArea, ElementLegend, ElementScale:
		return true
	}
	return false
}

// Point is a 2D coordinate pair.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// GeometryKind distinguishes open polylines from closed polygons.
type GeometryKind string

const (
	LineString GeometryKind = "LineString"
	Polygon    GeometryKind = "Polygon"
)

// Geometry is an ordered vertex list in image pixel coordinates.
//
// A Polygon always has its first vertex repeated as the last one; the
// constructors enforce this. A LineString has at least two vertices.
type Geometry struct {
	Kind   GeometryKind `json:"kind" msgpack:"kind"`
	Points []Point      `json:"points" msgpack:"points"`
}

// NewLineString builds an open polyline from the given vertices.
func NewLineString(points ...Point) (Geometry, error) {
	if len(points) < 2 {
		return Geometry{}, fmt.Errorf("line string needs at least 2 points, got %d", len(points))
	}
	pts := make([]Point, len(points))
	copy(pts, points)
	return Geometry{Kind: LineString, Points: pts}, nil
}

// NewPolygon builds a closed ring from the given vertices, appending the
// first vertex if the ring is not already closed.
func NewPolygon(points ...Point) (Geometry, error) {
	if len(points) < 3 {
		return Geometry{}, fmt.Errorf("polygon needs at least 3 points, got %d", len(points))
	}
	pts := make([]Point, 0, len(points)+1)
	pts = append(pts, points...)
	if pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	return Geometry{Kind: Polygon, Points: pts}, nil
}

// Closed reports whether the first and last vertices coincide.
func (g Geometry) Closed() bool {
	return len(g.Points) > 1 && g.Points[0] == g.Points[len(g.Points)-1]
}

// Centroid returns the arithmetic mean of all stored vertices. For a closed
// polygon the repeated closing vertex is counted too, matching how control
// point image positions are derived.
func (g Geometry) Centroid() (Point, bool) {
	if len(g.Points) == 0 {
		return Point{}, false
	}
	var sx, sy float64
	for _, p := range g.Points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(g.Points))
	return Point{X: sx / n, Y: sy / n}, true
}

// MapElement is one detected cartographic feature.
type MapElement struct {
	ID         string         `json:"id" msgpack:"id"`
	Type       ElementType    `json:"element_type" msgpack:"element_type"`
	Geometry   Geometry       `json:"geometry" msgpack:"geometry"`
	Properties map[string]any `json:"properties" msgpack:"properties"`
	Confidence float64        `json:"confidence" msgpack:"confidence"`
}

// NewMapElement builds an element, clamping confidence into [0, 1].
func NewMapElement(id string, t ElementType, g Geometry, props map[string]any, confidence float64) MapElement {
	if props == nil {
		props = map[string]any{}
	}
	return MapElement{
		ID:         id,
		Type:       t,
		Geometry:   g,
		Properties: props,
		Confidence: ClampUnit(confidence),
	}
}

// Text returns the recognized text of a text element, if any.
func (e MapElement) Text() (string, bool) {
	s, ok := e.Properties["text"].(string)
	return s, ok
}

// ClampUnit limits v to the closed interval [0, 1].
func ClampUnit(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
