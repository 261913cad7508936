package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ironsheep/map-georef/internal/model"
)

// Geometry is a GeoJSON geometry. Coordinates holds [][2]float64 for a
// LineString and [][][2]float64 for a Polygon.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Metadata summarizes the processing run.
type Metadata struct {
	AnalysisSuccess       bool                      `json:"ai_analysis_success"`
	GeoreferencingSuccess bool                      `json:"georeferencing_success"`
	Method                string                    `json:"method,omitempty"`
	TargetCRS             string                    `json:"target_crs,omitempty"`
	AccuracyRMSE          *model.RMSE               `json:"accuracy_rmse,omitempty"`
	ElementCounts         map[model.ElementType]int `json:"element_counts"`
}

// FeatureCollection is a GeoJSON FeatureCollection with an optional
// metadata member.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// NewFeature converts one element.
func NewFeature(e model.MapElement) Feature {
	props := make(map[string]any, len(e.Properties)+3)
	for k, v := range e.Properties {
		props[k] = v
	}
	props["element_type"] = string(e.Type)
	props["element_id"] = e.ID
	props["confidence"] = e.Confidence

	coords := make([][2]float64, len(e.Geometry.Points))
	for i, p := range e.Geometry.Points {
		coords[i] = [2]float64{p.X, p.Y}
	}

	g := Geometry{Type: string(model.LineString), Coordinates: coords}
	if e.Geometry.Kind == model.Polygon {
		g = Geometry{Type: string(model.Polygon), Coordinates: [][][2]float64{coords}}
	}
	return Feature{Type: "Feature", Geometry: g, Properties: props}
}

// NewFeatureCollection converts elements in order.
func NewFeatureCollection(elements []model.MapElement) *FeatureCollection {
	fc := &FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(elements))}
	for _, e := range elements {
		fc.Features = append(fc.Features, NewFeature(e))
	}
	return fc
}

// NewMetadata summarizes analysis and georeferencing outcomes. Either may
// be nil.
func NewMetadata(analysis *model.AnalysisResult, geo *model.GeoreferenceResult) *Metadata {
	m := &Metadata{ElementCounts: map[model.ElementType]int{}}
	if analysis != nil {
		m.AnalysisSuccess = analysis.Success
		m.ElementCounts = analysis.CountByType()
	}
	if geo != nil {
		m.GeoreferencingSuccess = geo.Success
		m.Method = string(geo.Method)
		m.TargetCRS = geo.TargetCRS
		m.AccuracyRMSE = geo.AccuracyRMSE
	}
	return m
}

// WriteGeoJSON writes fc as indented JSON.
func WriteGeoJSON(path string, fc *FeatureCollection) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write geojson: %w", err)
	}
	return nil
}
