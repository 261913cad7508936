// handlers_maps.go - Map upload, processing and export handlers
package api

import (
	"encoding/base64"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/export"
	"github.com/ironsheep/map-georef/internal/imaging"
	"github.com/ironsheep/map-georef/internal/jobs"
	"github.com/ironsheep/map-georef/internal/pipeline"
	"github.com/ironsheep/map-georef/internal/store"
)

// MapHandlerImpl implements the MapHandler interface
type MapHandlerImpl struct {
	cfg      *config.Config
	store    *store.Store
	jobs     *jobs.Manager
	exporter *export.Exporter
	cache    *imaging.ImageCache
}

// NewMapHandler creates a new map handler instance
func NewMapHandler(deps *Dependencies) MapHandler {
	return &MapHandlerImpl{
		cfg:      deps.Config,
		store:    deps.Store,
		jobs:     deps.Jobs,
		exporter: deps.Exporter,
		cache:    deps.Cache,
	}
}

type uploadMapRequest struct {
	Filename string `json:"filename"`
	Data     string `json:"data"` // base64
}

func (r uploadMapRequest) validate(allowed []string) error {
	if r.Filename == "" {
		return NewValidationError("filename")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	if err := imaging.ValidateExtension(r.Filename, allowed); err != nil {
		return NewBadRequestError("unsupported file type", err)
	}
	return nil
}

// HandleUpload accepts a map as base64 JSON and registers it
func (h *MapHandlerImpl) HandleUpload(c echo.Context) error {
	var req uploadMapRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(h.cfg.Limits.AllowedExtensions); err != nil {
		return err
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}
	if limit := int64(h.cfg.Limits.MaxFileSizeMB) << 20; limit > 0 && int64(len(data)) > limit {
		return NewTooLargeError(int64(len(data)), h.cfg.Limits.MaxFileSizeMB)
	}

	// PDFs are rendered on first load; raster uploads are checked now
	if imaging.FormatFromExt(req.Filename) != "pdf" {
		if _, err := imaging.Decode(data); err != nil {
			return NewBadRequestError("file is not a readable image", err)
		}
	}

	rec, err := h.store.Save(filepath.Base(req.Filename), data)
	if err != nil {
		return NewInternalError("failed to save map", err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// HandleList returns every registered map without results
func (h *MapHandlerImpl) HandleList(c echo.Context) error {
	records := h.store.List()
	for i := range records {
		records[i].Analysis = nil
		records[i].Georeference = nil
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"maps":  records,
		"total": len(records),
	})
}

// HandleDelete removes a map and its uploaded file
func (h *MapHandlerImpl) HandleDelete(c echo.Context) error {
	id := c.Param("id")
	rec, err := h.store.Get(id)
	if err != nil {
		return fromDomainError(id, err)
	}
	if rec.Status == store.StatusProcessing {
		return NewConflictError("map is being processed")
	}
	if err := h.store.Delete(id); err != nil {
		return fromDomainError(id, err)
	}
	h.cache.Evict(rec.Path)
	return c.NoContent(http.StatusNoContent)
}

type processMapRequest struct {
	TargetCRS            string `json:"target_crs"`
	EnableAnalysis       *bool  `json:"enable_ai_analysis"`
	EnableGeoreferencing *bool  `json:"enable_georeferencing"`
}

func (r processMapRequest) options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.TargetCRS = r.TargetCRS
	if r.EnableAnalysis != nil {
		opts.EnableAnalysis = *r.EnableAnalysis
	}
	if r.EnableGeoreferencing != nil {
		opts.EnableGeoreferencing = *r.EnableGeoreferencing
	}
	return opts
}

// HandleProcess starts background processing of an uploaded map
func (h *MapHandlerImpl) HandleProcess(c echo.Context) error {
	id := c.Param("id")

	var req processMapRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	opts := req.options()
	if opts.EnableGeoreferencing && !opts.EnableAnalysis {
		return fromDomainError(id, pipeline.ErrAnalysisRequired)
	}

	rec, err := h.jobs.Start(id, opts)
	if err != nil {
		return fromDomainError(id, err)
	}
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"id":      rec.ID,
		"status":  rec.Status,
		"message": "processing started",
	})
}

type statusResponse struct {
	ID          string       `json:"id"`
	Status      store.Status `json:"status"`
	Progress    int          `json:"progress"`
	CurrentStep string       `json:"current_step,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// HandleStatus reports processing progress
func (h *MapHandlerImpl) HandleStatus(c echo.Context) error {
	id := c.Param("id")
	rec, err := h.store.Get(id)
	if err != nil {
		return fromDomainError(id, err)
	}
	return c.JSON(http.StatusOK, statusResponse{
		ID:          rec.ID,
		Status:      rec.Status,
		Progress:    rec.Progress,
		CurrentStep: rec.CurrentStep,
		Error:       rec.Error,
	})
}

func (h *MapHandlerImpl) completed(id string) (store.Record, error) {
	rec, err := h.store.Get(id)
	if err != nil {
		return rec, fromDomainError(id, err)
	}
	if rec.Status != store.StatusCompleted {
		e := NewConflictError("processing not completed")
		e.Details = string(rec.Status)
		return rec, e
	}
	return rec, nil
}

// HandleResult returns the full record of a processed map
func (h *MapHandlerImpl) HandleResult(c echo.Context) error {
	rec, err := h.completed(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleResultMsgpack returns the processed record msgpack-encoded
func (h *MapHandlerImpl) HandleResultMsgpack(c echo.Context) error {
	rec, err := h.completed(c.Param("id"))
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleFormats lists the export formats of a processed map
func (h *MapHandlerImpl) HandleFormats(c echo.Context) error {
	rec, err := h.completed(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":      rec.ID,
		"formats": export.AvailableFormats(rec.Analysis, rec.Georeference),
	})
}

type exportMapRequest struct {
	Format          string `json:"format"`
	IncludeMetadata *bool  `json:"include_metadata"`
}

// HandleExport writes an export of a processed map and reports its files
func (h *MapHandlerImpl) HandleExport(c echo.Context) error {
	id := c.Param("id")

	var req exportMapRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Format == "" {
		return NewValidationError("format")
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return NewBadRequestError("unsupported export format", err)
	}

	rec, err := h.completed(id)
	if err != nil {
		return err
	}
	if !offered(export.AvailableFormats(rec.Analysis, rec.Georeference), format) {
		return NewBadRequestError("format not available for this map", nil)
	}
	img, err := h.cache.Load(rec.Path)
	if err != nil {
		return fromDomainError(id, err)
	}

	includeMetadata := true
	if req.IncludeMetadata != nil {
		includeMetadata = *req.IncludeMetadata
	}
	res, err := h.exporter.Export(export.Input{
		ID:           rec.ID,
		Image:        img,
		Analysis:     rec.Analysis,
		Georeference: rec.Georeference,
	}, format, includeMetadata)
	if err != nil {
		return fromDomainError(id, err)
	}
	return c.JSON(http.StatusOK, res)
}

func offered(formats []export.FormatInfo, f export.Format) bool {
	for _, info := range formats {
		if info.Format == f && info.Available {
			return true
		}
	}
	return false
}
