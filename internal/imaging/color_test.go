package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 200, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

var testRanges = map[string]HSVRange{
	"water":      {Lower: HSVColor{100, 50, 50}, Upper: HSVColor{130, 255, 255}},
	"green_area": {Lower: HSVColor{40, 50, 50}, Upper: HSVColor{80, 255, 255}},
}

func TestToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    HSVColor
	}{
		{"blue", 0, 0, 255, HSVColor{120, 255, 255}},
		{"green", 0, 200, 0, HSVColor{60, 255, 200}},
		{"red", 255, 0, 0, HSVColor{0, 255, 255}},
		{"white", 255, 255, 255, HSVColor{0, 0, 255}},
		{"black", 0, 0, 0, HSVColor{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHSV(tt.r, tt.g, tt.b)
			if got != tt.want {
				t.Errorf("ToHSV(%d,%d,%d) = %+v, want %+v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestSampleColor(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name    string
		x, y    int
		hex     string
		matches []string
	}{
		{"red", 10, 10, "#ff0000", []string{}},
		{"green", 90, 10, "#00c800", []string{"green_area"}},
		{"blue", 10, 90, "#0000ff", []string{"water"}},
		{"white", 90, 90, "#ffffff", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := SampleColor(img, tt.x, tt.y, testRanges)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}
			if sample.Hex != tt.hex {
				t.Errorf("Hex: got %s, want %s", sample.Hex, tt.hex)
			}
			if len(sample.Matches) != len(tt.matches) {
				t.Fatalf("Matches: got %v, want %v", sample.Matches, tt.matches)
			}
			for i := range tt.matches {
				if sample.Matches[i] != tt.matches[i] {
					t.Errorf("Matches[%d]: got %s, want %s", i, sample.Matches[i], tt.matches[i])
				}
			}
		})
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := createPatternImage(10, 10)
	for _, pt := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if _, err := SampleColor(img, pt[0], pt[1], nil); err == nil {
			t.Errorf("expected error for (%d,%d)", pt[0], pt[1])
		}
	}
}

func TestHSVRangeContainsBoundaries(t *testing.T) {
	water := testRanges["water"]
	if !water.Contains(HSVColor{100, 50, 50}) {
		t.Error("lower bound should be inclusive")
	}
	if !water.Contains(HSVColor{130, 255, 255}) {
		t.Error("upper bound should be inclusive")
	}
	if water.Contains(HSVColor{131, 255, 255}) {
		t.Error("hue above range should not match")
	}
	if water.Contains(HSVColor{120, 49, 255}) {
		t.Error("saturation below range should not match")
	}
}
