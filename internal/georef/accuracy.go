package georef

import (
	"math"

	"github.com/ironsheep/map-georef/internal/model"
)

// RMSE scores m against the control points: the root mean square of the
// distance between each projected image position and its true geographic
// position.
//
// It returns +Inf when there are no points or a point projects to infinity.
func RMSE(points []model.ControlPoint, m model.TransformMatrix) float64 {
	if len(points) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for _, cp := range points {
		p, ok := m.Apply(cp.Image)
		if !ok {
			return math.Inf(1)
		}
		dx, dy := p.X-cp.Geo.X, p.Y-cp.Geo.Y
		sum += dx*dx + dy*dy
	}
	rmse := math.Sqrt(sum / float64(len(points)))
	if math.IsNaN(rmse) {
		return math.Inf(1)
	}
	return rmse
}
