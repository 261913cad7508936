package georef

import (
	"errors"
	"math"
	"testing"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/model"
)

var trueH = model.TransformMatrix{
	{2.0, 0.1, 100},
	{-0.05, -1.5, 500},
	{1e-5, 2e-5, 1},
}

func wellSpread() []model.Point {
	return []model.Point{
		{X: 0, Y: 0}, {X: 400, Y: 10}, {X: 390, Y: 300}, {X: 5, Y: 290},
		{X: 200, Y: 150}, {X: 120, Y: 60}, {X: 310, Y: 220},
	}
}

func defaultEstimator() *Estimator {
	return NewEstimator(config.Default().Homography)
}

func assertMaps(t *testing.T, h model.TransformMatrix, points []model.ControlPoint, tol float64) {
	t.Helper()
	for _, cp := range points {
		p, ok := h.Apply(cp.Image)
		if !ok {
			t.Fatalf("point %v maps to infinity", cp.Image)
		}
		if math.Hypot(p.X-cp.Geo.X, p.Y-cp.Geo.Y) > tol {
			t.Errorf("point %v: got %v, want %v", cp.Image, p, cp.Geo)
		}
	}
}

func TestEstimateExactFit(t *testing.T) {
	points := controlPointsFrom(trueH, wellSpread()[:5]...)

	fit, err := defaultEstimator().Estimate(points)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if fit.InlierCount() != 5 {
		t.Errorf("Expected 5 inliers, got %d", fit.InlierCount())
	}
	if !invertible(fit.Matrix) {
		t.Error("Expected an invertible matrix")
	}
	if math.Abs(fit.Matrix[2][2]-1) > 1e-12 {
		t.Errorf("Expected normalized matrix, h22 = %v", fit.Matrix[2][2])
	}
	assertMaps(t, fit.Matrix, points, 1e-6)

	// Generalizes beyond the control points
	probe := controlPointsFrom(trueH, model.Point{X: 250, Y: 80}, model.Point{X: 50, Y: 200})
	assertMaps(t, fit.Matrix, probe, 1e-5)
}

func TestEstimateFourPoints(t *testing.T) {
	points := controlPointsFrom(trueH, wellSpread()[:4]...)
	fit, err := defaultEstimator().Estimate(points)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	assertMaps(t, fit.Matrix, points, 1e-6)
}

func TestEstimateRejectsOutlier(t *testing.T) {
	points := controlPointsFrom(trueH, wellSpread()...)
	points[4].Geo.X += 1000

	fit, err := defaultEstimator().Estimate(points)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if fit.Inliers[4] {
		t.Error("Expected the shifted point to be an outlier")
	}
	if fit.InlierCount() != len(points)-1 {
		t.Errorf("Expected %d inliers, got %d", len(points)-1, fit.InlierCount())
	}

	good := append(append([]model.ControlPoint{}, points[:4]...), points[5:]...)
	assertMaps(t, fit.Matrix, good, 1e-5)
}

func TestEstimateInsufficientPoints(t *testing.T) {
	for n := 0; n < 4; n++ {
		points := controlPointsFrom(trueH, wellSpread()[:n]...)
		_, err := defaultEstimator().Estimate(points)

		var ipErr *InsufficientControlPointsError
		if !errors.As(err, &ipErr) {
			t.Fatalf("n=%d: expected *InsufficientControlPointsError, got %v", n, err)
		}
		if ipErr.Have != n || ipErr.Need != 4 {
			t.Errorf("n=%d: unexpected error fields %+v", n, ipErr)
		}
		if !errors.Is(err, ErrInsufficientControlPoints) {
			t.Errorf("n=%d: expected errors.Is ErrInsufficientControlPoints", n)
		}
	}
}

func TestEstimateCollinear(t *testing.T) {
	points := controlPointsFrom(trueH,
		model.Point{X: 0, Y: 0}, model.Point{X: 10, Y: 10}, model.Point{X: 20, Y: 20},
		model.Point{X: 30, Y: 30}, model.Point{X: 40, Y: 40},
	)
	_, err := defaultEstimator().Estimate(points)

	var hErr *HomographyError
	if !errors.As(err, &hErr) {
		t.Fatalf("Expected *HomographyError, got %v", err)
	}
}

func TestEstimateCoincident(t *testing.T) {
	p := model.Point{X: 5, Y: 5}
	points := controlPointsFrom(trueH, p, p, p, p)
	_, err := defaultEstimator().Estimate(points)

	var hErr *HomographyError
	if !errors.As(err, &hErr) {
		t.Fatalf("Expected *HomographyError, got %v", err)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	cfg := config.Default().Homography
	cfg.MaxIterations = 10 // C(7,4)=35 forces random sampling

	points := controlPointsFrom(trueH, wellSpread()...)
	points[2].Geo.Y -= 500

	first, err := NewEstimator(cfg).Estimate(points)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	second, err := NewEstimator(cfg).Estimate(points)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if first.Matrix != second.Matrix {
		t.Errorf("Expected identical matrices, got %v and %v", first.Matrix, second.Matrix)
	}
}

func TestCombinations(t *testing.T) {
	tests := []struct {
		n, k, limit, want int
	}{
		{4, 4, 100, 1},
		{5, 4, 100, 5},
		{7, 4, 100, 35},
		{3, 4, 100, 0},
		{100, 4, 2000, 2001},
	}
	for _, tt := range tests {
		if got := combinations(tt.n, tt.k, tt.limit); got != tt.want {
			t.Errorf("combinations(%d, %d, %d) = %d, want %d", tt.n, tt.k, tt.limit, got, tt.want)
		}
	}
}

func TestRMSE(t *testing.T) {
	identity := model.TransformMatrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	points := []model.ControlPoint{
		{Image: model.Point{X: 0, Y: 0}, Geo: model.Point{X: 3, Y: 4}},
		{Image: model.Point{X: 1, Y: 1}, Geo: model.Point{X: 1, Y: 1}},
	}
	// sqrt((25 + 0) / 2)
	if got, want := RMSE(points, identity), math.Sqrt(12.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("RMSE = %v, want %v", got, want)
	}

	if got := RMSE(nil, identity); !math.IsInf(got, 1) {
		t.Errorf("Expected +Inf for no points, got %v", got)
	}

	atInfinity := model.TransformMatrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 0}}
	if got := RMSE(points, atInfinity); !math.IsInf(got, 1) {
		t.Errorf("Expected +Inf for a degenerate matrix, got %v", got)
	}
}
