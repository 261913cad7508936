package detection

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ironsheep/map-georef/internal/model"
)

// DetectRoads returns one open polyline per Hough segment of the edge map.
func DetectRoads(src gocv.Mat, p Params) Outcome {
	return run(DetectorRoads, func() ([]model.MapElement, error) {
		edges, err := edgeMap(src, p)
		if err != nil {
			return nil, err
		}
		defer edges.Close()

		segments := houghSegments(edges, p.RoadHough)
		roads := make([]model.MapElement, 0, len(segments))
		for i, s := range segments {
			g, err := model.NewLineString(s.Start, s.End)
			if err != nil {
				continue
			}
			roads = append(roads, model.NewMapElement(
				fmt.Sprintf("road_%d", i),
				model.ElementRoad,
				g,
				map[string]any{"width": 1, "type": "road"},
				p.RoadConfidence,
			))
		}
		return roads, nil
	})
}
