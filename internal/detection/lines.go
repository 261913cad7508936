package detection

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/imaging"
	"github.com/ironsheep/map-georef/internal/model"
)

// Segment is a line segment returned by the probabilistic Hough transform.
type Segment struct {
	Start        model.Point `json:"start"`
	End          model.Point `json:"end"`
	Length       float64     `json:"length"`
	AngleDegrees float64     `json:"angle_degrees"`
}

func newSegment(x1, y1, x2, y2 int) Segment {
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	return Segment{
		Start:        model.Point{X: float64(x1), Y: float64(y1)},
		End:          model.Point{X: float64(x2), Y: float64(y2)},
		Length:       math.Hypot(dx, dy),
		AngleDegrees: math.Atan2(dy, dx) * 180 / math.Pi,
	}
}

// NearHorizontal reports whether the segment angle lies within tol degrees
// of 0 or 180.
func (s Segment) NearHorizontal(tol float64) bool {
	return math.Abs(s.AngleDegrees) < tol || math.Abs(s.AngleDegrees-180) < tol
}

// checkInput rejects Mats the detectors cannot process. OpenCV aborts the
// process on bad input instead of returning an error, so this runs first.
func checkInput(src gocv.Mat) error {
	if src.Empty() {
		return fmt.Errorf("input image is empty")
	}
	if src.Channels() != 3 {
		return fmt.Errorf("expected 3-channel BGR image, got %d channels", src.Channels())
	}
	return nil
}

// edgeMap returns the Canny edge map of src with the configured thresholds.
func edgeMap(src gocv.Mat, p Params) (gocv.Mat, error) {
	if err := checkInput(src); err != nil {
		return gocv.NewMat(), err
	}
	edges := imaging.Edges(src, p.CannyLow, p.CannyHigh)
	if edges.Empty() {
		edges.Close()
		return gocv.NewMat(), fmt.Errorf("edge detection produced no output")
	}
	return edges, nil
}

// houghSegments runs HoughLinesP (rho 1px, theta 1 degree) over an edge map.
// Segments are returned in the order OpenCV reports them.
func houghSegments(edges gocv.Mat, h config.HoughConfig) []Segment {
	lines := gocv.NewMat()
	defer lines.Close()

	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180, h.Threshold,
		float32(h.MinLineLength), float32(h.MaxLineGap))

	segments := make([]Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		if len(v) < 4 {
			continue
		}
		segments = append(segments, newSegment(int(v[0]), int(v[1]), int(v[2]), int(v[3])))
	}
	return segments
}
