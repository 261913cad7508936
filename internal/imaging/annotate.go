package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/map-georef/internal/model"
)

// StrokeWidth is the line thickness used when outlining elements.
const StrokeWidth = 2

var elementPalette = map[model.ElementType]string{
	model.ElementRoad:      "#ff0000",
	model.ElementWater:     "#0000ff",
	model.ElementBuilding:  "#00ff00",
	model.ElementText:      "#ffff00",
	model.ElementGreenArea: "#00ff00",
}

const defaultElementHex = "#808080"

// ElementColor returns the outline color for an element type. Unknown types
// are drawn gray.
func ElementColor(t model.ElementType) color.NRGBA {
	hex, ok := elementPalette[t]
	if !ok {
		hex = defaultElementHex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(defaultElementHex)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Annotate draws every element's geometry over a copy of img. Polylines stay
// open; polygons are drawn with their closing edge.
func Annotate(img image.Image, elements []model.MapElement) *image.NRGBA {
	out := imaging.Clone(img)

	for _, e := range elements {
		c := ElementColor(e.Type)
		pts := e.Geometry.Points
		for i := 1; i < len(pts); i++ {
			drawLine(out, round(pts[i-1].X), round(pts[i-1].Y), round(pts[i].X), round(pts[i].Y), c)
		}
	}
	return out
}

// drawLine rasterizes a segment with Bresenham's algorithm using a square
// StrokeWidth brush.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		stamp(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func stamp(img *image.NRGBA, x, y int, c color.NRGBA) {
	b := img.Bounds()
	for oy := 0; oy < StrokeWidth; oy++ {
		for ox := 0; ox < StrokeWidth; ox++ {
			px, py := x+ox, y+oy
			if px >= b.Min.X && px < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
				img.SetNRGBA(px, py, c)
			}
		}
	}
}

func round(v float64) int {
	return int(math.Round(v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
