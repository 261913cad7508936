// Package crs reprojects coordinates between coordinate reference systems
// using PROJ.
//
// All coordinates are in traditional GIS order: longitude/easting first,
// latitude/northing second, whatever axis order the CRS definition uses.
package crs

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/twpayne/go-proj/v10"

	"github.com/ironsheep/map-georef/internal/model"
)

// WGS84 is the geographic CRS geocoding services answer in.
const WGS84 = "EPSG:4326"

// Transformer converts a point from one CRS to another.
type Transformer interface {
	Transform(src, dst string, p model.Point) (model.Point, error)
}

// TransformError reports a failed reprojection.
type TransformError struct {
	Src, Dst string
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("failed to transform %s -> %s: %v", e.Src, e.Dst, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Same reports whether two CRS identifiers name the same system.
func Same(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Proj is a Transformer backed by a PROJ context. Operations are created
// lazily per CRS pair and reused.
//
// A PROJ context must not be used from two goroutines at once, so calls
// are serialized.
type Proj struct {
	mu  sync.Mutex
	ctx *proj.Context
	ops map[[2]string]*proj.PJ
}

// NewProj creates a PROJ-backed transformer.
func NewProj() *Proj {
	return &Proj{
		ctx: proj.NewContext(),
		ops: make(map[[2]string]*proj.PJ),
	}
}

// Transform reprojects p from src to dst. Identical CRS identifiers return
// p unchanged.
func (t *Proj) Transform(src, dst string, p model.Point) (model.Point, error) {
	if Same(src, dst) {
		return p, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	pj, err := t.operation(src, dst)
	if err != nil {
		return model.Point{}, &TransformError{Src: src, Dst: dst, Err: err}
	}

	out, err := pj.Forward(proj.NewCoord(p.X, p.Y, 0, 0))
	if err != nil {
		return model.Point{}, &TransformError{Src: src, Dst: dst, Err: err}
	}
	x, y := out.X(), out.Y()
	if math.IsInf(x, 0) || math.IsInf(y, 0) || math.IsNaN(x) || math.IsNaN(y) {
		return model.Point{}, &TransformError{Src: src, Dst: dst, Err: fmt.Errorf("point (%g, %g) outside projection domain", p.X, p.Y)}
	}
	return model.Point{X: x, Y: y}, nil
}

func (t *Proj) operation(src, dst string) (*proj.PJ, error) {
	key := [2]string{src, dst}
	if pj, ok := t.ops[key]; ok {
		return pj, nil
	}

	pj, err := t.ctx.NewCRSToCRS(src, dst, nil)
	if err != nil {
		return nil, err
	}
	normalized, err := pj.NormalizeForVisualization()
	if err != nil {
		pj.Destroy()
		return nil, err
	}
	pj.Destroy()

	t.ops[key] = normalized
	return normalized, nil
}

// Close releases the PROJ objects.
func (t *Proj) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, pj := range t.ops {
		pj.Destroy()
		delete(t.ops, k)
	}
	t.ctx.Destroy()
}

// Identity is a Transformer for setups where every CRS is the same. It
// fails for any real conversion.
type Identity struct{}

func (Identity) Transform(src, dst string, p model.Point) (model.Point, error) {
	if !Same(src, dst) {
		return model.Point{}, &TransformError{Src: src, Dst: dst, Err: fmt.Errorf("no reprojection available")}
	}
	return p, nil
}
