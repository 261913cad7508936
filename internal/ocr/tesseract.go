package ocr

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/otiai10/gosseract/v2"
)

// Word is one recognized word with its pixel bounding box.
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-100 engine scale
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Recognizer runs OCR over a whole image and returns word boxes in reading
// order.
type Recognizer interface {
	Recognize(img image.Image, language string) ([]Word, error)
}

// Tesseract is a Recognizer backed by the Tesseract engine through gosseract.
//
// A fresh client is created per call, so a single Tesseract value may be
// shared between concurrent pipeline runs.
type Tesseract struct{}

// NewTesseract returns the Tesseract recognizer.
func NewTesseract() *Tesseract {
	return &Tesseract{}
}

// Recognize encodes img as PNG, hands it to Tesseract, and returns every
// RIL_WORD level box.
//
// The language code must have installed training data (for example "ces"
// needs tesseract-ocr-ces).
func (t *Tesseract) Recognize(img image.Image, language string) ([]Word, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	origin := img.Bounds().Min
	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, Word{
			Text:       box.Word,
			Confidence: box.Confidence,
			X:          box.Box.Min.X - origin.X,
			Y:          box.Box.Min.Y - origin.Y,
			Width:      box.Box.Dx(),
			Height:     box.Box.Dy(),
		})
	}
	return words, nil
}

// EngineInfo describes the OCR backend available to this process.
type EngineInfo struct {
	Available bool   `json:"available"`
	Backend   string `json:"backend"`
	Version   string `json:"version,omitempty"`
	DataPath  string `json:"data_path,omitempty"`
}

// Info reports the Tesseract version and training data location.
func Info() EngineInfo {
	info := EngineInfo{
		Backend:  "tesseract (gosseract)",
		DataPath: os.Getenv("TESSDATA_PREFIX"),
	}
	client := gosseract.NewClient()
	defer client.Close()
	if v := client.Version(); v != "" {
		info.Available = true
		info.Version = v
	}
	return info
}
