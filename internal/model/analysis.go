package model

// ScaleInfo describes a candidate scale bar.
//
// ScaleValue and Unit are never populated by the detector; they exist so that
// a later reader of the scale bar label can fill them in.
type ScaleInfo struct {
	Detected     bool     `json:"detected" msgpack:"detected"`
	LineLengthPx float64  `json:"scale_line_length_px" msgpack:"scale_line_length_px"`
	Line         []Point  `json:"line,omitempty" msgpack:"line,omitempty"`
	ScaleValue   *float64 `json:"scale_value" msgpack:"scale_value"`
	Unit         *string  `json:"unit" msgpack:"unit"`
	Confidence   float64  `json:"confidence" msgpack:"confidence"`
	Error        string   `json:"error,omitempty" msgpack:"error,omitempty"`
}

// LegendInfo describes whether a legend region appears to be present.
type LegendInfo struct {
	Detected    bool    `json:"detected" msgpack:"detected"`
	RegionCount int     `json:"region_count" msgpack:"region_count"`
	BBox        *[4]int `json:"bbox" msgpack:"bbox"`
	Confidence  float64 `json:"confidence" msgpack:"confidence"`
	Error       string  `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Diagnostic records a step that failed softly during analysis.
type Diagnostic struct {
	Step  string `json:"step" msgpack:"step"`
	Error string `json:"error" msgpack:"error"`
}

// AnalysisResult aggregates everything produced by one analysis run.
//
// Elements holds the segmented features in detector order (roads, water,
// buildings, green areas) followed by text elements.
type AnalysisResult struct {
	Width       int          `json:"width" msgpack:"width"`
	Height      int          `json:"height" msgpack:"height"`
	Scale       ScaleInfo    `json:"scale_info" msgpack:"scale_info"`
	Legend      LegendInfo   `json:"legend_info" msgpack:"legend_info"`
	Elements    []MapElement `json:"elements" msgpack:"elements"`
	Success     bool         `json:"success" msgpack:"success"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
}

// TextElements returns the text elements in their original order.
func (r *AnalysisResult) TextElements() []MapElement {
	return r.ElementsOfType(ElementText)
}

// ElementsOfType filters Elements by type, preserving order.
func (r *AnalysisResult) ElementsOfType(t ElementType) []MapElement {
	var out []MapElement
	for _, e := range r.Elements {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// CountByType tallies elements per type.
func (r *AnalysisResult) CountByType() map[ElementType]int {
	counts := make(map[ElementType]int)
	for _, e := range r.Elements {
		counts[e.Type]++
	}
	return counts
}
