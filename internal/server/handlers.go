package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/ironsheep/map-georef/internal/detection"
	"github.com/ironsheep/map-georef/internal/export"
	"github.com/ironsheep/map-georef/internal/georef"
	"github.com/ironsheep/map-georef/internal/imaging"
	"github.com/ironsheep/map-georef/internal/model"
	"github.com/ironsheep/map-georef/internal/pipeline"
	"github.com/ironsheep/map-georef/internal/store"
)

// errNotCompleted is returned when results are requested for a map that has
// not finished processing.
var errNotCompleted = errors.New("processing not completed")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "map_load", "map_process").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Resolves the map from the store or loads it from disk
//  4. Calls the pipeline, job manager or exporter
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Map records
	case "map_load":
		return s.handleMapLoad(args)
	case "map_list":
		return s.store.List(), nil

	// Pipeline stages
	case "map_analyze":
		return s.handleMapAnalyze(ctx, args)
	case "map_georeference":
		return s.handleMapGeoreference(ctx, args)
	case "map_process":
		return s.handleMapProcess(ctx, args)
	case "map_status":
		return s.handleMapStatus(args)
	case "map_result":
		return s.handleMapResult(args)

	// Export
	case "map_formats":
		return s.handleMapFormats(args)
	case "map_export":
		return s.handleMapExport(args)

	// Measurement
	case "map_measure_distance":
		return s.handleMapMeasureDistance(args)

	// Inspection
	case "map_edge_detect":
		return s.handleMapEdgeDetect(args)
	case "map_sample_color":
		return s.handleMapSampleColor(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// mapRef selects a map by store id or by path.
type mapRef struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// loadMap resolves ref to a decoded image. The record is nil for path-only
// references.
func (s *Server) loadMap(ref mapRef) (image.Image, *store.Record, error) {
	switch {
	case ref.ID != "":
		rec, err := s.store.Get(ref.ID)
		if err != nil {
			return nil, nil, err
		}
		img, err := s.cache.Load(rec.Path)
		if err != nil {
			return nil, nil, err
		}
		return img, &rec, nil
	case ref.Path != "":
		if err := imaging.ValidateExtension(ref.Path, s.cfg.Limits.AllowedExtensions); err != nil {
			return nil, nil, err
		}
		img, err := s.cache.Load(ref.Path)
		if err != nil {
			return nil, nil, err
		}
		return img, nil, nil
	}
	return nil, nil, errors.New("either id or path is required")
}

func (s *Server) completedRecord(id string) (store.Record, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return rec, err
	}
	if rec.Status != store.StatusCompleted {
		return rec, fmt.Errorf("%w: map %s is %s", errNotCompleted, id, rec.Status)
	}
	return rec, nil
}

// === Map Record Handlers ===

type mapLoadArgs struct {
	Path string `json:"path"`
}

// MapLoadResult is the registered record plus image metadata.
type MapLoadResult struct {
	store.Record
	Image *imaging.ImageInfo `json:"image"`
}

func (s *Server) handleMapLoad(args json.RawMessage) (interface{}, error) {
	var a mapLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if err := imaging.ValidateExtension(a.Path, s.cfg.Limits.AllowedExtensions); err != nil {
		return nil, err
	}

	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	if limit := int64(s.cfg.Limits.MaxFileSizeMB) << 20; limit > 0 && info.FileSizeBytes > limit {
		return nil, fmt.Errorf("file too large: %d bytes (limit %d MB)", info.FileSizeBytes, s.cfg.Limits.MaxFileSizeMB)
	}

	rec, err := s.store.Register(filepath.Base(a.Path), a.Path)
	if err != nil {
		return nil, err
	}
	return &MapLoadResult{Record: rec, Image: info}, nil
}

type mapStatusResult struct {
	ID          string       `json:"id"`
	Status      store.Status `json:"status"`
	Progress    int          `json:"progress"`
	CurrentStep string       `json:"current_step,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type mapIDArgs struct {
	ID string `json:"id"`
}

func (s *Server) handleMapStatus(args json.RawMessage) (interface{}, error) {
	var a mapIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	rec, err := s.store.Get(a.ID)
	if err != nil {
		return nil, err
	}
	return &mapStatusResult{
		ID:          rec.ID,
		Status:      rec.Status,
		Progress:    rec.Progress,
		CurrentStep: rec.CurrentStep,
		Error:       rec.Error,
	}, nil
}

func (s *Server) handleMapResult(args json.RawMessage) (interface{}, error) {
	var a mapIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.completedRecord(a.ID)
}

// === Pipeline Handlers ===

func (s *Server) handleMapAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a mapRef
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, _, err := s.loadMap(a)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Analyze(ctx, img)
}

type mapGeoreferenceArgs struct {
	mapRef
	TargetCRS string `json:"target_crs"`
}

func (s *Server) handleMapGeoreference(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a mapGeoreferenceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, rec, err := s.loadMap(a.mapRef)
	if err != nil {
		return nil, err
	}

	var analysis *model.AnalysisResult
	if rec != nil && rec.Analysis != nil {
		analysis = rec.Analysis
	} else {
		analysis, err = s.pipeline.Analyze(ctx, img)
		if err != nil {
			return nil, err
		}
	}

	target := a.TargetCRS
	if target == "" {
		target = s.cfg.CRS.DefaultTarget
	}
	return s.pipeline.Georeference(ctx, img, analysis, target)
}

type mapProcessArgs struct {
	ID                   string `json:"id"`
	TargetCRS            string `json:"target_crs"`
	EnableAnalysis       *bool  `json:"enable_ai_analysis"`
	EnableGeoreferencing *bool  `json:"enable_georeferencing"`
	Wait                 bool   `json:"wait"`
}

func (a mapProcessArgs) options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.TargetCRS = a.TargetCRS
	if a.EnableAnalysis != nil {
		opts.EnableAnalysis = *a.EnableAnalysis
	}
	if a.EnableGeoreferencing != nil {
		opts.EnableGeoreferencing = *a.EnableGeoreferencing
	}
	return opts
}

func (s *Server) handleMapProcess(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a mapProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ID == "" {
		return nil, errors.New("id is required")
	}

	opts := a.options()
	if opts.EnableGeoreferencing && !opts.EnableAnalysis {
		return nil, pipeline.ErrAnalysisRequired
	}
	if a.Wait {
		return s.jobs.Run(ctx, a.ID, opts)
	}
	return s.jobs.Start(a.ID, opts)
}

// === Export Handlers ===

func (s *Server) handleMapFormats(args json.RawMessage) (interface{}, error) {
	var a mapIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	rec, err := s.completedRecord(a.ID)
	if err != nil {
		return nil, err
	}
	return export.AvailableFormats(rec.Analysis, rec.Georeference), nil
}

type mapExportArgs struct {
	ID              string `json:"id"`
	Format          string `json:"format"`
	IncludeMetadata *bool  `json:"include_metadata"`
}

func (s *Server) handleMapExport(args json.RawMessage) (interface{}, error) {
	var a mapExportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}
	rec, err := s.completedRecord(a.ID)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(rec.Path)
	if err != nil {
		return nil, err
	}

	includeMetadata := true
	if a.IncludeMetadata != nil {
		includeMetadata = *a.IncludeMetadata
	}
	return s.exporter.Export(export.Input{
		ID:           rec.ID,
		Image:        img,
		Analysis:     rec.Analysis,
		Georeference: rec.Georeference,
	}, format, includeMetadata)
}

// === Measurement Handlers ===

type mapMeasureDistanceArgs struct {
	ID string `json:"id"`
	X1 int    `json:"x1"`
	Y1 int    `json:"y1"`
	X2 int    `json:"x2"`
	Y2 int    `json:"y2"`
}

func (s *Server) handleMapMeasureDistance(args json.RawMessage) (interface{}, error) {
	var a mapMeasureDistanceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	rec, err := s.completedRecord(a.ID)
	if err != nil {
		return nil, err
	}
	return georef.MeasureDistance(rec.Georeference,
		model.Point{X: float64(a.X1), Y: float64(a.Y1)},
		model.Point{X: float64(a.X2), Y: float64(a.Y2)})
}

// === Inspection Handlers ===

type mapEdgeDetectArgs struct {
	mapRef
	ThresholdLow  float64 `json:"threshold_low"`
	ThresholdHigh float64 `json:"threshold_high"`
}

func (s *Server) handleMapEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a mapEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ThresholdLow == 0 {
		a.ThresholdLow = s.cfg.Detection.CannyLow
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = s.cfg.Detection.CannyHigh
	}
	img, _, err := s.loadMap(a.mapRef)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, a.ThresholdLow, a.ThresholdHigh)
}

type mapSampleColorArgs struct {
	mapRef
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleMapSampleColor(args json.RawMessage) (interface{}, error) {
	var a mapSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, _, err := s.loadMap(a.mapRef)
	if err != nil {
		return nil, err
	}
	ranges := map[string]imaging.HSVRange{
		string(model.ElementWater):     detection.HSVRange(s.cfg.Detection.Water),
		string(model.ElementGreenArea): detection.HSVRange(s.cfg.Detection.Green),
	}
	return imaging.SampleColor(img, a.X, a.Y, ranges)
}
