package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/model"
)

// contour is an external contour extracted from a binary mask, detached from
// native memory.
type contour struct {
	Index  int
	Points []image.Point
	Area   float64
}

// externalContours finds the outermost contours of a binary mask. The
// callback receives each native PointVector while it is still valid, for
// operations such as polygon approximation.
func externalContours(mask gocv.Mat, each func(c contour, pv gocv.PointVector)) {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		each(contour{
			Index:  i,
			Points: pv.ToPoints(),
			Area:   gocv.ContourArea(pv),
		}, pv)
	}
}

// polygonFrom converts pixel vertices to a closed polygon.
func polygonFrom(points []image.Point) (model.Geometry, error) {
	pts := make([]model.Point, len(points))
	for i, p := range points {
		pts[i] = model.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return model.NewPolygon(pts...)
}

// hsvMask thresholds src in HSV space. The caller owns the returned Mat.
func hsvMask(src gocv.Mat, r config.HSVRange) (gocv.Mat, error) {
	if err := checkInput(src); err != nil {
		return gocv.NewMat(), err
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(r.Lower[0], r.Lower[1], r.Lower[2], 0),
		gocv.NewScalar(r.Upper[0], r.Upper[1], r.Upper[2], 0),
		&mask)
	return mask, nil
}

// DetectBuildings finds closed outlines in the edge map whose area lies
// strictly between BuildingMinArea and BuildingMaxArea, approximates each to
// a polygon with a tolerance of BuildingEpsilon times its perimeter, and
// keeps those with at least four vertices.
func DetectBuildings(src gocv.Mat, p Params) Outcome {
	return run(DetectorBuildings, func() ([]model.MapElement, error) {
		edges, err := edgeMap(src, p)
		if err != nil {
			return nil, err
		}
		defer edges.Close()

		var buildings []model.MapElement
		externalContours(edges, func(c contour, pv gocv.PointVector) {
			if !(c.Area > p.BuildingMinArea && c.Area < p.BuildingMaxArea) {
				return
			}

			epsilon := p.BuildingEpsilon * gocv.ArcLength(pv, true)
			approx := gocv.ApproxPolyDP(pv, epsilon, true)
			defer approx.Close()

			vertices := approx.ToPoints()
			if len(vertices) < 4 {
				return
			}
			g, err := polygonFrom(vertices)
			if err != nil {
				return
			}
			buildings = append(buildings, model.NewMapElement(
				fmt.Sprintf("building_%d", c.Index),
				model.ElementBuilding,
				g,
				map[string]any{"area": c.Area, "type": "building"},
				p.BuildingConfidence,
			))
		})
		return buildings, nil
	})
}
