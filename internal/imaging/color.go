package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSVColor is a color in OpenCV HSV units, the scale the water and green
// area masks are defined in:
//   - H: 0-180 (degrees halved; 60=green, 120=blue)
//   - S: 0-255
//   - V: 0-255
type HSVColor struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// HSVRange is an inclusive box in OpenCV HSV space.
type HSVRange struct {
	Lower HSVColor `json:"lower"`
	Upper HSVColor `json:"upper"`
}

// Contains reports whether c lies inside the range on all three axes.
func (r HSVRange) Contains(c HSVColor) bool {
	return c.H >= r.Lower.H && c.H <= r.Upper.H &&
		c.S >= r.Lower.S && c.S <= r.Upper.S &&
		c.V >= r.Lower.V && c.V <= r.Upper.V
}

// ColorSample is the color at one pixel in the representations the map
// detectors reason about.
type ColorSample struct {
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Hex     string   `json:"hex"`
	RGB     RGBColor `json:"rgb"`
	HSV     HSVColor `json:"hsv"`
	Matches []string `json:"matches"`
}

// ToHSV converts 8-bit RGB to OpenCV HSV units. Values are rounded the way
// OpenCV's 8-bit conversion rounds them.
func ToHSV(r, g, b uint8) HSVColor {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v := c.Hsv()
	return HSVColor{
		H: math.Round(h / 2),
		S: math.Round(s * 255),
		V: math.Round(v * 255),
	}
}

// SampleColor reads the pixel at (x, y) and reports which of the named HSV
// ranges contain it.
//
// Coordinates are 0-based from the top-left. An error is returned when the
// point lies outside the image.
func SampleColor(img image.Image, x, y int, ranges map[string]HSVRange) (*ColorSample, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	c, _ := colorful.MakeColor(img.At(x, y))
	r8, g8, b8 := c.RGB255()
	hsv := ToHSV(r8, g8, b8)

	matches := []string{}
	for name, rg := range ranges {
		if rg.Contains(hsv) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)

	return &ColorSample{
		X:       x,
		Y:       y,
		Hex:     c.Hex(),
		RGB:     RGBColor{R: r8, G: g8, B: b8},
		HSV:     hsv,
		Matches: matches,
	}, nil
}
