package imaging

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestToMatFromMat(t *testing.T) {
	img := createPatternImage(40, 20)

	m, err := ToMat(img)
	if err != nil {
		t.Fatalf("ToMat failed: %v", err)
	}
	defer m.Close()

	if m.Cols() != 40 || m.Rows() != 20 || m.Channels() != 3 {
		t.Fatalf("unexpected mat shape %dx%dx%d", m.Cols(), m.Rows(), m.Channels())
	}

	// Blue pixel is stored BGR
	v := m.GetVecbAt(15, 5)
	if v[0] != 255 || v[1] != 0 || v[2] != 0 {
		t.Errorf("expected BGR (255,0,0) at blue quadrant, got %v", v)
	}

	back, err := FromMat(m)
	if err != nil {
		t.Fatalf("FromMat failed: %v", err)
	}
	for _, pt := range []image.Point{{5, 5}, {35, 5}, {5, 15}, {35, 15}} {
		want := color.NRGBAModel.Convert(img.At(pt.X, pt.Y))
		got := back.At(pt.X, pt.Y)
		if got != want {
			t.Errorf("pixel %v: got %v, want %v", pt, got, want)
		}
	}
}

func TestToMat_EmptyImage(t *testing.T) {
	m, err := ToMat(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	defer m.Close()
	if err == nil {
		t.Error("expected error for empty image")
	}
}

func TestFromMat_Empty(t *testing.T) {
	m := gocv.NewMat()
	defer m.Close()
	if _, err := FromMat(m); err == nil {
		t.Error("expected error for empty mat")
	}
}

func TestPreprocess(t *testing.T) {
	img := createSquareImage(64, 48, 10, 10, 40, 30)
	src, err := ToMat(img)
	if err != nil {
		t.Fatalf("ToMat failed: %v", err)
	}
	defer src.Close()

	out := Preprocess(src, DefaultPreprocessParams())
	defer out.Close()

	if out.Cols() != 64 || out.Rows() != 48 || out.Channels() != 3 {
		t.Errorf("preprocess changed shape: %dx%dx%d", out.Cols(), out.Rows(), out.Channels())
	}
}

func TestPreprocess_FallsBackToInput(t *testing.T) {
	// A single-channel mat is not a valid map image; the input comes back
	gray := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC1)
	defer gray.Close()

	out := Preprocess(gray, DefaultPreprocessParams())
	defer out.Close()

	if out.Channels() != 1 || out.Cols() != 10 || out.Rows() != 10 {
		t.Errorf("expected clone of input, got %dx%dx%d", out.Cols(), out.Rows(), out.Channels())
	}
}

func TestPreprocessImage(t *testing.T) {
	img := createPatternImage(32, 32)
	out := PreprocessImage(img, DefaultPreprocessParams())
	if out.Bounds().Dx() != 32 || out.Bounds().Dy() != 32 {
		t.Errorf("unexpected bounds %v", out.Bounds())
	}

	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if got := PreprocessImage(empty, DefaultPreprocessParams()); got != image.Image(empty) {
		t.Error("expected original image back on failure")
	}
}
