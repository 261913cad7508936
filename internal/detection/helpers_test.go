package detection

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ironsheep/map-georef/internal/imaging"
	"github.com/ironsheep/map-georef/internal/model"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fillRect paints the half-open rectangle [x1,x2) x [y1,y2)
func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, c)
		}
	}
}

// createHorizontalLineImage creates an image with a horizontal line from x1 to x2
func createHorizontalLineImage(width, height, x1, x2, y, thickness int) *image.RGBA {
	img := createTestImage(width, height, color.White)
	fillRect(img, x1, y, x2, y+thickness, color.Black)
	return img
}

// toMat converts a test image to a BGR Mat, failing the test on error
func toMat(t *testing.T, img image.Image) gocv.Mat {
	t.Helper()
	m, err := imaging.ToMat(img)
	if err != nil {
		t.Fatalf("ToMat failed: %v", err)
	}
	return m
}

// assertElementInvariants checks properties every detector output must hold
func assertElementInvariants(t *testing.T, elements []model.MapElement) {
	t.Helper()
	for _, e := range elements {
		if e.Confidence < 0 || e.Confidence > 1 {
			t.Errorf("%s: confidence %v outside [0,1]", e.ID, e.Confidence)
		}
		if e.Geometry.Kind == model.Polygon && !e.Geometry.Closed() {
			t.Errorf("%s: polygon is not closed", e.ID)
		}
		if !e.Type.Valid() {
			t.Errorf("%s: invalid element type %q", e.ID, e.Type)
		}
	}
}

var (
	blue  = color.RGBA{0, 0, 255, 255}
	green = color.RGBA{0, 200, 0, 255}
)
