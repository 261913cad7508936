package ocr

import (
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/map-georef/internal/model"
)

// DefaultMinConfidence is the engine confidence (0-100) a word must exceed.
const DefaultMinConfidence = 30

// OCRError reports that the engine could not process an image.
type OCRError struct {
	Err error
}

func (e *OCRError) Error() string {
	return fmt.Sprintf("OCR failed: %v", e.Err)
}

func (e *OCRError) Unwrap() error { return e.Err }

// TextExtractor turns OCR word boxes into text map elements.
type TextExtractor struct {
	engine        Recognizer
	language      string
	minConfidence float64
}

// NewTextExtractor creates an extractor for one language. Words must score
// strictly above minConfidence (0-100) to be kept.
func NewTextExtractor(engine Recognizer, language string, minConfidence float64) *TextExtractor {
	return &TextExtractor{
		engine:        engine,
		language:      language,
		minConfidence: minConfidence,
	}
}

// Language returns the OCR language code.
func (x *TextExtractor) Language() string {
	return x.language
}

// Extract recognizes every word in img. Words with empty trimmed text or a
// confidence not above the threshold are dropped. Each kept word becomes a
// closed 5-vertex bounding box polygon.
//
// Engine failures are returned as *OCRError; callers treat them as an empty
// result.
func (x *TextExtractor) Extract(img image.Image) (elements []model.MapElement, err error) {
	defer func() {
		if r := recover(); r != nil {
			elements = nil
			err = &OCRError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	words, err := x.engine.Recognize(img, x.language)
	if err != nil {
		return nil, &OCRError{Err: err}
	}

	elements = []model.MapElement{}
	for i, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" || !(w.Confidence > x.minConfidence) {
			continue
		}
		el, err := wordElement(i, text, w)
		if err != nil {
			continue
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func wordElement(index int, text string, w Word) (model.MapElement, error) {
	x0, y0 := float64(w.X), float64(w.Y)
	x1, y1 := float64(w.X+w.Width), float64(w.Y+w.Height)

	g, err := model.NewPolygon(
		model.Point{X: x0, Y: y0},
		model.Point{X: x1, Y: y0},
		model.Point{X: x1, Y: y1},
		model.Point{X: x0, Y: y1},
	)
	if err != nil {
		return model.MapElement{}, err
	}

	confidence := w.Confidence / 100
	return model.NewMapElement(
		fmt.Sprintf("text_%d", index),
		model.ElementText,
		g,
		map[string]any{
			"text":       text,
			"confidence": confidence,
			"font_size":  w.Height,
		},
		confidence,
	), nil
}
