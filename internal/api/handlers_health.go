// handlers_health.go - Health check handlers
package api

import (
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ironsheep/map-georef/internal/ocr"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
	}
}

type memoryStatus struct {
	TotalBytes     uint64  `json:"total_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	UsedPercent    float64 `json:"used_percent"`
	HeapBytes      uint64  `json:"heap_bytes"`
}

// HandleHealth returns server health status, OCR engine availability and
// memory usage.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	memory := memoryStatus{HeapBytes: ms.HeapAlloc}
	if vm, err := mem.VirtualMemory(); err == nil {
		memory.TotalBytes = vm.Total
		memory.AvailableBytes = vm.Available
		memory.UsedPercent = vm.UsedPercent
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"ocr":     ocr.Info(),
		"memory":  memory,
	})
}
