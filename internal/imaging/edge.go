package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"gocv.io/x/gocv"
)

// EdgeDetectResult contains an edge map encoded as base64 PNG.
//
// White pixels (255) are edges, black pixels (0) are not.
type EdgeDetectResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	EdgePixels  int    `json:"edge_pixels"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Edges runs Canny edge detection on a BGR Mat and returns a single-channel
// edge map. The caller owns the returned Mat.
//
// The same edge map feeds scale bar detection, road detection, and building
// contour extraction, so this preview shows exactly what those detectors see.
func Edges(src gocv.Mat, thresholdLow, thresholdHigh float64) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if src.Channels() == 1 {
		src.CopyTo(&gray)
	} else {
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	}

	edges := gocv.NewMat()
	gocv.Canny(gray, &edges, float32(thresholdLow), float32(thresholdHigh))
	return edges
}

// EdgeDetect renders the Canny edge map of img as a base64 PNG.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - thresholdLow: Hysteresis low threshold. The detectors use 50.
//   - thresholdHigh: Hysteresis high threshold. The detectors use 150.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh float64) (*EdgeDetectResult, error) {
	src, err := ToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	edges := Edges(src, thresholdLow, thresholdHigh)
	defer edges.Close()

	out, err := FromMat(edges)
	if err != nil {
		return nil, fmt.Errorf("failed to convert edge map: %w", err)
	}

	encoded, err := EncodePNGBase64(out)
	if err != nil {
		return nil, err
	}

	return &EdgeDetectResult{
		Width:       edges.Cols(),
		Height:      edges.Rows(),
		EdgePixels:  gocv.CountNonZero(edges),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imgio.Encode(&buf, img, imgio.PNGEncoder()); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNGBase64 encodes img as a base64 PNG string.
func EncodePNGBase64(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
