package georef

import (
	"context"
	"errors"
	"log"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/crs"
	"github.com/ironsheep/map-georef/internal/geocode"
	"github.com/ironsheep/map-georef/internal/model"
)

// Georeferencer chooses between the precise homography path and the
// fallback estimate. It holds only immutable configuration and may be
// shared by concurrent runs.
type Georeferencer struct {
	resolver      *Resolver
	estimator     *Estimator
	fallback      *Fallback
	transformer   crs.Transformer
	defaultTarget string
}

// New builds a Georeferencer. geocoder and transformer are the external
// place lookup and reprojection utility.
func New(cfg *config.Config, geocoder geocode.Geocoder, transformer crs.Transformer) *Georeferencer {
	return &Georeferencer{
		resolver:      NewResolver(cfg, geocoder, transformer),
		estimator:     NewEstimator(cfg.Homography),
		fallback:      NewFallback(cfg.Fallback),
		transformer:   transformer,
		defaultTarget: cfg.CRS.DefaultTarget,
	}
}

// Georeference resolves control points from the analysis text elements
// and produces a frame for a width x height image. An empty targetCRS
// selects the configured default.
//
// The returned error is always a *GeoreferencingError and only occurs on
// the precise path.
func (g *Georeferencer) Georeference(ctx context.Context, width, height int, analysis *model.AnalysisResult, targetCRS string) (*model.GeoreferenceResult, error) {
	var elements []model.MapElement
	if analysis != nil {
		elements = analysis.Elements
	}
	points := g.resolver.Resolve(ctx, elements)
	return g.FromControlPoints(width, height, points, targetCRS)
}

// FromControlPoints runs the state machine on already resolved points:
// at least MinPoints selects the homography path, anything less the
// fallback.
func (g *Georeferencer) FromControlPoints(width, height int, points []model.ControlPoint, targetCRS string) (*model.GeoreferenceResult, error) {
	if targetCRS == "" {
		targetCRS = g.defaultTarget
	}

	if len(points) < g.estimator.MinPoints() {
		log.Printf("warning: %v, using simple estimation", &InsufficientControlPointsError{Have: len(points), Need: g.estimator.MinPoints()})
		return g.estimateFallback(width, height)
	}

	fit, err := g.estimator.Estimate(points)
	if errors.Is(err, ErrInsufficientControlPoints) {
		return g.estimateFallback(width, height)
	}
	if err != nil {
		return nil, &GeoreferencingError{Err: err}
	}

	rmse := model.RMSE(RMSE(points, fit.Matrix))

	raster, err := ProjectRaster(width, height, fit.Matrix, g.resolver.WorkingCRS(), targetCRS, g.transformer)
	if err != nil {
		return nil, &GeoreferencingError{Err: err}
	}

	matrix := fit.Matrix
	if config.Debug() {
		log.Printf("homography fitted on %d/%d control points, rmse %.3f", fit.InlierCount(), len(points), float64(rmse))
	}

	return &model.GeoreferenceResult{
		Success:            true,
		Method:             model.MethodHomography,
		ControlPointsCount: len(points),
		ControlPoints:      points,
		TransformMatrix:    &matrix,
		AccuracyRMSE:       &rmse,
		TargetCRS:          raster.CRS,
		Bounds:             raster.Bounds,
		Transform:          raster.Transform,
	}, nil
}

func (g *Georeferencer) estimateFallback(width, height int) (*model.GeoreferenceResult, error) {
	res, err := g.fallback.Estimate(width, height)
	if err != nil {
		return nil, &GeoreferencingError{Err: err}
	}
	return res, nil
}
