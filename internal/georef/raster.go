package georef

import (
	"fmt"
	"math"

	"github.com/ironsheep/map-georef/internal/crs"
	"github.com/ironsheep/map-georef/internal/model"
)

// Raster is the georeferenced frame of an image.
type Raster struct {
	Bounds    model.Bounds
	Transform model.AffineTransform
	CRS       string
}

// Corners returns the image corners (0,0), (W,0), (W,H), (0,H).
func Corners(width, height int) [4]model.Point {
	w, h := float64(width), float64(height)
	return [4]model.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// ProjectRaster pushes the image corners through m, reprojects them from
// workingCRS into targetCRS when the two differ, and builds the bounding box
// and north-up affine transform from them.
func ProjectRaster(width, height int, m model.TransformMatrix, workingCRS, targetCRS string, t crs.Transformer) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if targetCRS == "" {
		targetCRS = workingCRS
	}

	b := model.Bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, c := range Corners(width, height) {
		p, ok := m.Apply(c)
		if !ok {
			return nil, &HomographyError{Reason: fmt.Sprintf("image corner (%g, %g) maps to infinity", c.X, c.Y)}
		}
		if !crs.Same(workingCRS, targetCRS) {
			var err error
			p, err = t.Transform(workingCRS, targetCRS, p)
			if err != nil {
				return nil, err
			}
		}
		b[0] = math.Min(b[0], p.X)
		b[1] = math.Min(b[1], p.Y)
		b[2] = math.Max(b[2], p.X)
		b[3] = math.Max(b[3], p.Y)
	}
	if !b.Valid() {
		return nil, fmt.Errorf("projected extent %v has no area", b)
	}

	return &Raster{
		Bounds:    b,
		Transform: model.FromBounds(b, width, height),
		CRS:       targetCRS,
	}, nil
}
