package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ToMat converts an image to a 3-channel BGR gocv.Mat. The caller owns the
// returned Mat and must Close it.
func ToMat(img image.Image) (gocv.Mat, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return gocv.NewMat(), fmt.Errorf("image has no pixels (%dx%d)", w, h)
	}

	data := make([]byte, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			data = append(data, byte(bl>>8), byte(g>>8), byte(r>>8))
		}
	}

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create mat: %w", err)
	}
	return mat, nil
}

// FromMat converts a BGR (CV_8UC3) or grayscale (CV_8UC1) Mat back to an
// *image.NRGBA.
func FromMat(m gocv.Mat) (*image.NRGBA, error) {
	if m.Empty() {
		return nil, fmt.Errorf("mat is empty")
	}
	w, h := m.Cols(), m.Rows()
	channels := m.Channels()
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}

	data := m.ToBytes()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := (y*w + x) * channels
			dst := out.PixOffset(x, y)
			if channels == 1 {
				v := data[src]
				out.Pix[dst], out.Pix[dst+1], out.Pix[dst+2] = v, v, v
			} else {
				out.Pix[dst] = data[src+2]
				out.Pix[dst+1] = data[src+1]
				out.Pix[dst+2] = data[src]
			}
			out.Pix[dst+3] = 255
		}
	}
	return out, nil
}
