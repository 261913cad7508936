package georef

import (
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/map-georef/internal/model"
)

const earthRadiusMeters = 6371008.8

// DistanceResult is a measurement between two pixels of a georeferenced
// map.
type DistanceResult struct {
	DistancePixels float64     `json:"distance_pixels"`
	AngleDegrees   float64     `json:"angle_degrees"`
	From           model.Point `json:"from"`
	To             model.Point `json:"to"`
	Distance       float64     `json:"distance"`
	Unit           string      `json:"unit"`
	CRS            string      `json:"crs"`
}

// PixelToGeo maps an image position into the result's CRS through its
// affine raster transform.
func PixelToGeo(res *model.GeoreferenceResult, p model.Point) (model.Point, error) {
	if res == nil || !res.Success {
		return model.Point{}, fmt.Errorf("map is not georeferenced")
	}
	return res.Transform.Apply(p.X, p.Y), nil
}

// MeasureDistance reports the pixel and ground distance between two image
// positions. Geographic CRSs are measured along the great circle in
// meters; projected CRSs in their own units.
func MeasureDistance(res *model.GeoreferenceResult, a, b model.Point) (*DistanceResult, error) {
	from, err := PixelToGeo(res, a)
	if err != nil {
		return nil, err
	}
	to, err := PixelToGeo(res, b)
	if err != nil {
		return nil, err
	}

	dx, dy := b.X-a.X, b.Y-a.Y
	out := &DistanceResult{
		DistancePixels: math.Round(math.Hypot(dx, dy)*100) / 100,
		AngleDegrees:   math.Round(math.Atan2(dy, dx)*180/math.Pi*10) / 10,
		From:           from,
		To:             to,
		CRS:            res.TargetCRS,
	}
	if geographic(res.TargetCRS) {
		out.Distance = haversine(from, to)
		out.Unit = "m"
	} else {
		out.Distance = math.Hypot(to.X-from.X, to.Y-from.Y)
		out.Unit = "crs_units"
	}
	return out, nil
}

func geographic(code string) bool {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "EPSG:4326", "OGC:CRS84", "EPSG:4258":
		return true
	}
	return false
}

// haversine returns the great circle distance in meters between two
// lon/lat points.
func haversine(a, b model.Point) float64 {
	lat1, lat2 := a.Y*math.Pi/180, b.Y*math.Pi/180
	dLat := lat2 - lat1
	dLon := (b.X - a.X) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
