package imaging

import (
	"image/color"
	"testing"

	"github.com/ironsheep/map-georef/internal/model"
)

func TestElementColor(t *testing.T) {
	tests := []struct {
		t    model.ElementType
		want color.NRGBA
	}{
		{model.ElementRoad, color.NRGBA{255, 0, 0, 255}},
		{model.ElementWater, color.NRGBA{0, 0, 255, 255}},
		{model.ElementBuilding, color.NRGBA{0, 255, 0, 255}},
		{model.ElementText, color.NRGBA{255, 255, 0, 255}},
		{model.ElementGreenArea, color.NRGBA{0, 255, 0, 255}},
		{model.ElementLegend, color.NRGBA{128, 128, 128, 255}},
	}
	for _, tt := range tests {
		if got := ElementColor(tt.t); got != tt.want {
			t.Errorf("ElementColor(%s) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestAnnotate(t *testing.T) {
	img := solidImage(50, 50, color.White)

	road, _ := model.NewLineString(model.Point{X: 5, Y: 10}, model.Point{X: 45, Y: 10})
	water, _ := model.NewPolygon(model.Point{X: 10, Y: 20}, model.Point{X: 40, Y: 20}, model.Point{X: 40, Y: 40}, model.Point{X: 10, Y: 40})
	elements := []model.MapElement{
		model.NewMapElement("road_0", model.ElementRoad, road, nil, 0.7),
		model.NewMapElement("water_0", model.ElementWater, water, nil, 0.8),
	}

	out := Annotate(img, elements)

	if got := out.NRGBAAt(25, 10); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("expected red road pixel, got %v", got)
	}
	// Closing edge of the polygon runs down x=10
	if got := out.NRGBAAt(10, 30); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("expected blue closing edge pixel, got %v", got)
	}
	// Interior stays untouched
	if got := out.NRGBAAt(25, 30); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("expected white interior, got %v", got)
	}
	// Source image is not modified
	if r, g, b, _ := img.At(25, 10).RGBA(); r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Error("Annotate modified its input")
	}
}
