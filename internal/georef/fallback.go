package georef

import (
	"fmt"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/model"
)

// Fallback estimates a frame from a fixed extent when control points are
// insufficient.
type Fallback struct {
	extent model.Bounds
	crs    string
}

// NewFallback uses the configured approximate extent.
func NewFallback(cfg config.FallbackConfig) *Fallback {
	return &Fallback{extent: model.Bounds(cfg.Extent), crs: cfg.CRS}
}

// Estimate stretches the extent over the image. The result carries no
// matrix and no RMSE.
func (f *Fallback) Estimate(width, height int) (*model.GeoreferenceResult, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if !f.extent.Valid() {
		return nil, fmt.Errorf("fallback extent %v has no area", f.extent)
	}

	b := f.extent
	pixelSize := [2]float64{
		(b.MaxX() - b.MinX()) / float64(width),
		(b.MaxY() - b.MinY()) / float64(height),
	}

	return &model.GeoreferenceResult{
		Success:            true,
		Method:             model.MethodSimpleEstimation,
		ControlPointsCount: 0,
		TargetCRS:          f.crs,
		Bounds:             b,
		Transform:          model.FromBounds(b, width, height),
		PixelSize:          &pixelSize,
	}, nil
}
