package ocr

import (
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/map-georef/internal/model"
)

// fakeRecognizer returns canned words
type fakeRecognizer struct {
	words    []Word
	err      error
	language string
}

func (f *fakeRecognizer) Recognize(img image.Image, language string) ([]Word, error) {
	f.language = language
	return f.words, f.err
}

func TestTextExtractor_FiltersWords(t *testing.T) {
	engine := &fakeRecognizer{words: []Word{
		{Text: "Olomouc", Confidence: 91, X: 10, Y: 20, Width: 60, Height: 14},
		{Text: "   ", Confidence: 95, X: 0, Y: 0, Width: 5, Height: 5},
		{Text: "blur", Confidence: 30, X: 5, Y: 5, Width: 20, Height: 10},
		{Text: " most ", Confidence: 30.5, X: 100, Y: 40, Width: 30, Height: 12},
	}}
	x := NewTextExtractor(engine, "ces", DefaultMinConfidence)

	elements, err := x.Extract(image.NewRGBA(image.Rect(0, 0, 200, 100)))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if engine.language != "ces" {
		t.Errorf("Expected language ces, got %s", engine.language)
	}
	if len(elements) != 2 {
		t.Fatalf("Expected 2 elements, got %d", len(elements))
	}

	first := elements[0]
	if first.ID != "text_0" || first.Type != model.ElementText {
		t.Errorf("unexpected first element %s/%s", first.ID, first.Type)
	}
	if first.Confidence != 0.91 {
		t.Errorf("Expected confidence 0.91, got %v", first.Confidence)
	}
	if text, _ := first.Text(); text != "Olomouc" {
		t.Errorf("Expected text Olomouc, got %q", text)
	}
	if first.Properties["font_size"] != 14 {
		t.Errorf("Expected font_size 14, got %v", first.Properties["font_size"])
	}
	if first.Properties["confidence"] != 0.91 {
		t.Errorf("Expected property confidence 0.91, got %v", first.Properties["confidence"])
	}

	pts := first.Geometry.Points
	if len(pts) != 5 || !first.Geometry.Closed() {
		t.Fatalf("Expected closed 5-vertex box, got %v", pts)
	}
	want := []model.Point{{X: 10, Y: 20}, {X: 70, Y: 20}, {X: 70, Y: 34}, {X: 10, Y: 34}, {X: 10, Y: 20}}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("vertex %d: got %v, want %v", i, pts[i], want[i])
		}
	}

	// Index comes from the engine word order, text is trimmed
	second := elements[1]
	if second.ID != "text_3" {
		t.Errorf("Expected id text_3, got %s", second.ID)
	}
	if text, _ := second.Text(); text != "most" {
		t.Errorf("Expected trimmed text, got %q", text)
	}
}

func TestTextExtractor_EngineFailure(t *testing.T) {
	engine := &fakeRecognizer{err: errors.New("no tessdata for ces")}
	x := NewTextExtractor(engine, "ces", DefaultMinConfidence)

	elements, err := x.Extract(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	var ocrErr *OCRError
	if !errors.As(err, &ocrErr) {
		t.Fatalf("Expected *OCRError, got %v", err)
	}
	if elements != nil {
		t.Errorf("Expected nil elements on failure, got %v", elements)
	}
}

type panickingRecognizer struct{}

func (panickingRecognizer) Recognize(image.Image, string) ([]Word, error) {
	panic("engine crashed")
}

func TestTextExtractor_RecoversPanic(t *testing.T) {
	x := NewTextExtractor(panickingRecognizer{}, "eng", DefaultMinConfidence)
	_, err := x.Extract(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	var ocrErr *OCRError
	if !errors.As(err, &ocrErr) {
		t.Fatalf("Expected *OCRError, got %v", err)
	}
}

func TestTextExtractor_NoWords(t *testing.T) {
	x := NewTextExtractor(&fakeRecognizer{}, "ces", DefaultMinConfidence)
	elements, err := x.Extract(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if elements == nil || len(elements) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", elements)
	}
}
