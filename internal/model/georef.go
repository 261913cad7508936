package model

import (
	"encoding/json"
	"math"
)

// Method names the georeferencing strategy that produced a result.
type Method string

const (
	MethodHomography       Method = "homography"
	MethodSimpleEstimation Method = "simple_estimation"
)

// ControlPoint pairs an image position with a geographic position.
type ControlPoint struct {
	Image      Point   `json:"image" msgpack:"image"`
	Geo        Point   `json:"geo" msgpack:"geo"`
	Text       string  `json:"text" msgpack:"text"`
	Confidence float64 `json:"confidence" msgpack:"confidence"`
	Address    string  `json:"address,omitempty" msgpack:"address,omitempty"`
}

// TransformMatrix is a 3x3 projective transform from image pixels to
// geographic coordinates, in row-major order.
type TransformMatrix [3][3]float64

// Apply maps p through the homography. It returns false when the point maps
// to infinity.
func (m TransformMatrix) Apply(p Point) (Point, bool) {
	w := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]
	if math.Abs(w) < 1e-12 || math.IsNaN(w) {
		return Point{}, false
	}
	x := (m[0][0]*p.X + m[0][1]*p.Y + m[0][2]) / w
	y := (m[1][0]*p.X + m[1][1]*p.Y + m[1][2]) / w
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}

// Determinant returns det(m).
func (m TransformMatrix) Determinant() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Bounds is an axis-aligned extent [MinX, MinY, MaxX, MaxY].
type Bounds [4]float64

func (b Bounds) MinX() float64 { return b[0] }
func (b Bounds) MinY() float64 { return b[1] }
func (b Bounds) MaxX() float64 { return b[2] }
func (b Bounds) MaxY() float64 { return b[3] }

// Valid reports whether the extent has positive width and height.
func (b Bounds) Valid() bool {
	return b[2] > b[0] && b[3] > b[1]
}

// AffineTransform is a north-up raster transform in the (a, b, c, d, e, f)
// convention:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
type AffineTransform struct {
	A float64 `json:"a" msgpack:"a"`
	B float64 `json:"b" msgpack:"b"`
	C float64 `json:"c" msgpack:"c"`
	D float64 `json:"d" msgpack:"d"`
	E float64 `json:"e" msgpack:"e"`
	F float64 `json:"f" msgpack:"f"`
}

// FromBounds builds the transform that maps a width x height raster onto
// the given extent, with row 0 at the northern edge.
func FromBounds(b Bounds, width, height int) AffineTransform {
	return AffineTransform{
		A: (b.MaxX() - b.MinX()) / float64(width),
		C: b.MinX(),
		E: -(b.MaxY() - b.MinY()) / float64(height),
		F: b.MaxY(),
	}
}

// Apply maps a pixel position to geographic coordinates.
func (t AffineTransform) Apply(col, row float64) Point {
	return Point{
		X: t.A*col + t.B*row + t.C,
		Y: t.D*col + t.E*row + t.F,
	}
}

// Coefficients returns the six coefficients in (a, b, c, d, e, f) order.
func (t AffineTransform) Coefficients() [6]float64 {
	return [6]float64{t.A, t.B, t.C, t.D, t.E, t.F}
}

// RMSE is a positional error in working CRS units. A transform that could
// not be scored carries +Inf, which JSON encodes as the string "Infinity".
type RMSE float64

// Finite reports whether the error was computable.
func (r RMSE) Finite() bool {
	return !math.IsInf(float64(r), 0) && !math.IsNaN(float64(r))
}

func (r RMSE) MarshalJSON() ([]byte, error) {
	if !r.Finite() {
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(r))
}

func (r *RMSE) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*r = RMSE(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = RMSE(v)
	return nil
}

// GeoreferenceResult is the outcome of georeferencing one image.
//
// On the homography path TransformMatrix and AccuracyRMSE are set and
// PixelSize is nil; on the fallback path the reverse holds.
type GeoreferenceResult struct {
	Success            bool             `json:"success" msgpack:"success"`
	Method             Method           `json:"method" msgpack:"method"`
	ControlPointsCount int              `json:"control_points_count" msgpack:"control_points_count"`
	ControlPoints      []ControlPoint   `json:"control_points,omitempty" msgpack:"control_points,omitempty"`
	TransformMatrix    *TransformMatrix `json:"transform_matrix" msgpack:"transform_matrix"`
	AccuracyRMSE       *RMSE            `json:"accuracy_rmse" msgpack:"accuracy_rmse"`
	TargetCRS          string           `json:"target_crs" msgpack:"target_crs"`
	Bounds             Bounds           `json:"bounds" msgpack:"bounds"`
	Transform          AffineTransform  `json:"transform" msgpack:"transform"`
	PixelSize          *[2]float64      `json:"pixel_size,omitempty" msgpack:"pixel_size,omitempty"`
	Error              string           `json:"error,omitempty" msgpack:"error,omitempty"`
}
