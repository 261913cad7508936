package georef

import (
	"errors"
	"math"
	"testing"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/crs"
	"github.com/ironsheep/map-georef/internal/model"
)

func TestProjectRaster(t *testing.T) {
	// 10 units per pixel, y flipped, origin at (1000, 5000)
	h := model.TransformMatrix{{10, 0, 1000}, {0, -10, 5000}, {0, 0, 1}}

	r, err := ProjectRaster(200, 100, h, "EPSG:5514", "EPSG:5514", crs.Identity{})
	if err != nil {
		t.Fatalf("ProjectRaster failed: %v", err)
	}
	if r.Bounds != (model.Bounds{1000, 4000, 3000, 5000}) {
		t.Errorf("unexpected bounds %v", r.Bounds)
	}
	if r.CRS != "EPSG:5514" {
		t.Errorf("unexpected CRS %s", r.CRS)
	}

	// The affine transform maps the raster corners back onto the bounds
	topLeft := r.Transform.Apply(0, 0)
	bottomRight := r.Transform.Apply(200, 100)
	if topLeft != (model.Point{X: 1000, Y: 5000}) || bottomRight != (model.Point{X: 3000, Y: 4000}) {
		t.Errorf("unexpected corners %v, %v", topLeft, bottomRight)
	}
}

func TestProjectRasterPerspective(t *testing.T) {
	r, err := ProjectRaster(400, 300, trueH, "EPSG:5514", "", crs.Identity{})
	if err != nil {
		t.Fatalf("ProjectRaster failed: %v", err)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range Corners(400, 300) {
		p, _ := trueH.Apply(c)
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if r.Bounds != (model.Bounds{minX, minY, maxX, maxY}) {
		t.Errorf("bounds %v, want %v", r.Bounds, model.Bounds{minX, minY, maxX, maxY})
	}
	if r.CRS != "EPSG:5514" {
		t.Errorf("Expected empty target to keep working CRS, got %s", r.CRS)
	}
}

func TestProjectRasterErrors(t *testing.T) {
	if _, err := ProjectRaster(0, 10, trueH, "EPSG:5514", "EPSG:5514", crs.Identity{}); err == nil {
		t.Error("Expected error for empty image")
	}

	// Corner (0,0) has w = 0
	atInfinity := model.TransformMatrix{{1, 0, 0}, {0, 1, 0}, {1, 0, 0}}
	_, err := ProjectRaster(10, 10, atInfinity, "EPSG:5514", "EPSG:5514", crs.Identity{})
	var hErr *HomographyError
	if !errors.As(err, &hErr) {
		t.Errorf("Expected *HomographyError, got %v", err)
	}

	// Identity cannot reproject
	_, err = ProjectRaster(10, 10, trueH, "EPSG:5514", "EPSG:4326", crs.Identity{})
	var tErr *crs.TransformError
	if !errors.As(err, &tErr) {
		t.Errorf("Expected *crs.TransformError, got %v", err)
	}
}

func TestFallbackEstimate(t *testing.T) {
	f := NewFallback(config.Default().Fallback)

	res, err := f.Estimate(200, 400)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if res.Method != model.MethodSimpleEstimation || !res.Success {
		t.Errorf("unexpected result %+v", res)
	}
	if math.Abs(res.PixelSize[0]-0.0005) > 1e-12 || math.Abs(res.PixelSize[1]-0.0005) > 1e-12 {
		t.Errorf("unexpected pixel size %v", res.PixelSize)
	}
	if res.Transform.C != 17.2 || res.Transform.F != 49.7 {
		t.Errorf("unexpected transform origin %+v", res.Transform)
	}

	if _, err := f.Estimate(0, 0); err == nil {
		t.Error("Expected error for empty image")
	}
	if _, err := NewFallback(config.FallbackConfig{CRS: "EPSG:4326"}).Estimate(10, 10); err == nil {
		t.Error("Expected error for empty extent")
	}
}

func TestMeasureDistance(t *testing.T) {
	res, err := NewFallback(config.Default().Fallback).Estimate(100, 100)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	d, err := MeasureDistance(res, model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0})
	if err != nil {
		t.Fatalf("MeasureDistance failed: %v", err)
	}
	if d.DistancePixels != 100 || d.AngleDegrees != 0 {
		t.Errorf("unexpected pixel measurement %+v", d)
	}
	if d.Unit != "m" {
		t.Errorf("Expected meters for a geographic CRS, got %s", d.Unit)
	}
	// 0.1 degrees of longitude at 49.7N
	want := 0.1 * math.Pi / 180 * earthRadiusMeters * math.Cos(49.7*math.Pi/180)
	if math.Abs(d.Distance-want)/want > 0.001 {
		t.Errorf("Distance = %.1f, want about %.1f", d.Distance, want)
	}

	projected := &model.GeoreferenceResult{
		Success:   true,
		TargetCRS: "EPSG:5514",
		Transform: model.AffineTransform{A: 2, C: 0, E: -2, F: 0},
	}
	d, err = MeasureDistance(projected, model.Point{X: 0, Y: 0}, model.Point{X: 3, Y: 4})
	if err != nil {
		t.Fatalf("MeasureDistance failed: %v", err)
	}
	if d.Distance != 10 || d.Unit != "crs_units" {
		t.Errorf("unexpected projected distance %+v", d)
	}

	if _, err := MeasureDistance(&model.GeoreferenceResult{}, model.Point{}, model.Point{}); err == nil {
		t.Error("Expected error for a failed result")
	}
}
