package export

import (
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/map-georef/internal/imaging"
	"github.com/ironsheep/map-georef/internal/model"
)

// WriteAnnotatedPNG outlines elements over img and saves it as PNG.
func WriteAnnotatedPNG(path string, img image.Image, elements []model.MapElement) error {
	annotated := imaging.Annotate(img, elements)
	if err := imgio.Save(path, annotated, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// WorldFile renders the six-line ESRI world file for an affine transform.
// The reference point is the center of the upper-left pixel.
func WorldFile(t model.AffineTransform) string {
	lines := []float64{
		t.A,
		t.D,
		t.B,
		t.E,
		t.C + t.A/2 + t.B/2,
		t.F + t.D/2 + t.E/2,
	}
	var sb strings.Builder
	for _, v := range lines {
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteWorldRaster writes base.png, base.pgw and base.crs.
func WriteWorldRaster(base string, img image.Image, geo *model.GeoreferenceResult) ([]string, error) {
	pngPath := base + ".png"
	worldPath := base + ".pgw"
	crsPath := base + ".crs"

	if err := imgio.Save(pngPath, img, imgio.PNGEncoder()); err != nil {
		return nil, fmt.Errorf("failed to write png: %w", err)
	}
	if err := os.WriteFile(worldPath, []byte(WorldFile(geo.Transform)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write world file: %w", err)
	}
	if err := os.WriteFile(crsPath, []byte(geo.TargetCRS+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("failed to write crs sidecar: %w", err)
	}
	return []string{pngPath, worldPath, crsPath}, nil
}
