package georef

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/model"
)

const sampleSize = 4

// Estimator fits a homography from image pixels to working CRS coordinates
// with RANSAC.
//
// Sampling is deterministic: when the number of 4-point subsets does not
// exceed MaxIterations every subset is tried in lexicographic order,
// otherwise MaxIterations subsets are drawn from a generator seeded with
// Seed. The same points always produce the same matrix.
type Estimator struct {
	threshold     float64
	minPoints     int
	maxIterations int
	seed          int64
}

// NewEstimator creates an estimator from the homography config section.
func NewEstimator(cfg config.HomographyConfig) *Estimator {
	minPoints := cfg.MinPoints
	if minPoints < sampleSize {
		minPoints = sampleSize
	}
	iters := cfg.MaxIterations
	if iters <= 0 {
		iters = 2000
	}
	return &Estimator{
		threshold:     cfg.ReprojectionThreshold,
		minPoints:     minPoints,
		maxIterations: iters,
		seed:          cfg.Seed,
	}
}

// MinPoints returns the number of control points the precise path needs.
func (e *Estimator) MinPoints() int {
	return e.minPoints
}

// Fit is a fitted homography and the control points it explains.
type Fit struct {
	Matrix  model.TransformMatrix
	Inliers []bool
}

// InlierCount returns how many control points are within the threshold.
func (f Fit) InlierCount() int {
	n := 0
	for _, in := range f.Inliers {
		if in {
			n++
		}
	}
	return n
}

// Estimate fits the homography.
//
// Fewer than MinPoints points is an *InsufficientControlPointsError. A
// degenerate configuration (every sample has three collinear points, or
// no consensus of four inliers) is a *HomographyError.
func (e *Estimator) Estimate(points []model.ControlPoint) (*Fit, error) {
	if len(points) < e.minPoints {
		return nil, &InsufficientControlPointsError{Have: len(points), Need: e.minPoints}
	}

	src := make([]model.Point, len(points))
	dst := make([]model.Point, len(points))
	for i, cp := range points {
		src[i] = cp.Image
		dst[i] = cp.Geo
	}

	var (
		best      *model.TransformMatrix
		bestMask  []bool
		bestCount int
		bestErr   float64
	)
	e.samples(len(points), func(idx [sampleSize]int) {
		s := make([]model.Point, sampleSize)
		d := make([]model.Point, sampleSize)
		for k, i := range idx {
			s[k], d[k] = src[i], dst[i]
		}
		if hasCollinearTriple(s) || hasCollinearTriple(d) {
			return
		}
		h, ok := solveDLT(s, d)
		if !ok || !invertible(h) {
			return
		}
		mask, count, sse := e.score(h, src, dst)
		if best == nil || count > bestCount || (count == bestCount && sse < bestErr) {
			hh := h
			best, bestMask, bestCount, bestErr = &hh, mask, count, sse
		}
	})

	if best == nil {
		return nil, &HomographyError{Reason: "degenerate control point configuration (collinear or coincident points)"}
	}
	if bestCount < sampleSize {
		return nil, &HomographyError{Reason: "no consensus among control points"}
	}

	// Refit on the consensus set
	s := make([]model.Point, 0, bestCount)
	d := make([]model.Point, 0, bestCount)
	for i, in := range bestMask {
		if in {
			s = append(s, src[i])
			d = append(d, dst[i])
		}
	}
	if h, ok := solveDLT(s, d); ok && invertible(h) {
		if mask, count, _ := e.score(h, src, dst); count >= bestCount {
			best, bestMask = &h, mask
		}
	}

	return &Fit{Matrix: *best, Inliers: bestMask}, nil
}

func (e *Estimator) score(h model.TransformMatrix, src, dst []model.Point) ([]bool, int, float64) {
	mask := make([]bool, len(src))
	count := 0
	sse := 0.0
	for i := range src {
		p, ok := h.Apply(src[i])
		if !ok {
			continue
		}
		dist := math.Hypot(p.X-dst[i].X, p.Y-dst[i].Y)
		if dist <= e.threshold {
			mask[i] = true
			count++
			sse += dist * dist
		}
	}
	return mask, count, sse
}

// samples calls fn for each 4-point subset to try.
func (e *Estimator) samples(n int, fn func([sampleSize]int)) {
	if combinations(n, sampleSize, e.maxIterations) <= e.maxIterations {
		var idx [sampleSize]int
		for a := 0; a < n; a++ {
			for b := a + 1; b < n; b++ {
				for c := b + 1; c < n; c++ {
					for d := c + 1; d < n; d++ {
						idx = [sampleSize]int{a, b, c, d}
						fn(idx)
					}
				}
			}
		}
		return
	}

	rng := rand.New(rand.NewSource(e.seed))
	for it := 0; it < e.maxIterations; it++ {
		var idx [sampleSize]int
		for k := 0; k < sampleSize; k++ {
		draw:
			for {
				v := rng.Intn(n)
				for j := 0; j < k; j++ {
					if idx[j] == v {
						continue draw
					}
				}
				idx[k] = v
				break
			}
		}
		fn(idx)
	}
}

// combinations returns C(n, k), or limit+1 once it exceeds limit.
func combinations(n, k, limit int) int {
	if k > n {
		return 0
	}
	c := 1
	for i := 1; i <= k; i++ {
		c = c * (n - k + i) / i
		if c > limit {
			return limit + 1
		}
	}
	return c
}

func hasCollinearTriple(pts []model.Point) bool {
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			for k := j + 1; k < len(pts); k++ {
				if collinear(pts[i], pts[j], pts[k]) {
					return true
				}
			}
		}
	}
	return false
}

func collinear(a, b, c model.Point) bool {
	abx, aby := b.X-a.X, b.Y-a.Y
	acx, acy := c.X-a.X, c.Y-a.Y
	cross := math.Abs(abx*acy - aby*acx)
	scale := math.Max(abx*abx+aby*aby, acx*acx+acy*acy)
	if scale == 0 {
		return true
	}
	return cross <= 1e-9*scale
}

// normalization returns the similarity transform moving pts to zero mean
// and sqrt(2) mean distance from the origin.
func normalization(pts []model.Point) (*mat.Dense, bool) {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(pts))
	cx /= n
	cy /= n

	var meanDist float64
	for _, p := range pts {
		meanDist += math.Hypot(p.X-cx, p.Y-cy)
	}
	meanDist /= n
	if meanDist == 0 || math.IsNaN(meanDist) || math.IsInf(meanDist, 0) {
		return nil, false
	}

	s := math.Sqrt2 / meanDist
	return mat.NewDense(3, 3, []float64{
		s, 0, -s * cx,
		0, s, -s * cy,
		0, 0, 1,
	}), true
}

func apply3(t *mat.Dense, p model.Point) (float64, float64) {
	return t.At(0, 0)*p.X + t.At(0, 1)*p.Y + t.At(0, 2),
		t.At(1, 0)*p.X + t.At(1, 1)*p.Y + t.At(1, 2)
}

// solveDLT computes the normalized direct linear transform from src to dst
// using the right singular vector of the smallest singular value.
func solveDLT(src, dst []model.Point) (model.TransformMatrix, bool) {
	var h model.TransformMatrix
	if len(src) < sampleSize || len(src) != len(dst) {
		return h, false
	}

	ts, ok := normalization(src)
	if !ok {
		return h, false
	}
	td, ok := normalization(dst)
	if !ok {
		return h, false
	}

	a := mat.NewDense(2*len(src), 9, nil)
	for i := range src {
		x, y := apply3(ts, src[i])
		u, v := apply3(td, dst[i])
		a.SetRow(2*i, []float64{-x, -y, -1, 0, 0, 0, u * x, u * y, u})
		a.SetRow(2*i+1, []float64{0, 0, 0, -x, -y, -1, v * x, v * y, v})
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return h, false
	}
	var v mat.Dense
	svd.VTo(&v)
	hn := mat.NewDense(3, 3, nil)
	for i := 0; i < 9; i++ {
		hn.Set(i/3, i%3, v.At(i, 8))
	}

	// H = Td^-1 * Hn * Ts
	var tdInv mat.Dense
	if err := tdInv.Inverse(td); err != nil {
		return h, false
	}
	var tmp, full mat.Dense
	tmp.Mul(hn, ts)
	full.Mul(&tdInv, &tmp)

	w := full.At(2, 2)
	if math.Abs(w) < 1e-15 {
		return h, false
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := full.At(r, c) / w
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return h, false
			}
			h[r][c] = v
		}
	}
	return h, true
}

// invertible reports whether h is non-singular.
func invertible(h model.TransformMatrix) bool {
	det := h.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return false
	}
	m := mat.NewDense(3, 3, []float64{
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2],
	})
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		if cond, ok := err.(mat.Condition); ok && !math.IsInf(float64(cond), 0) {
			return true
		}
		return false
	}
	return true
}
