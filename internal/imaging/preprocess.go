package imaging

import (
	"fmt"
	"image"
	"log"

	"gocv.io/x/gocv"
)

// PreprocessParams controls the denoise and contrast steps.
type PreprocessParams struct {
	BilateralDiameter int
	BilateralSigma    float64
	CLAHEClipLimit    float64
	CLAHETileGrid     int
}

// DefaultPreprocessParams returns the 9/75/75 bilateral filter and a 2.0
// clip limit CLAHE on an 8x8 grid.
func DefaultPreprocessParams() PreprocessParams {
	return PreprocessParams{
		BilateralDiameter: 9,
		BilateralSigma:    75,
		CLAHEClipLimit:    2.0,
		CLAHETileGrid:     8,
	}
}

// Preprocess denoises a BGR map image with an edge-preserving bilateral
// filter and then equalizes local contrast on the lightness channel of the
// Lab representation.
//
// Preprocess never fails: if any step cannot be performed, a clone of the
// input is returned and the failure is logged. The caller owns the returned
// Mat.
func Preprocess(src gocv.Mat, p PreprocessParams) gocv.Mat {
	out, err := preprocess(src, p)
	if err != nil {
		log.Printf("warning: preprocessing failed, using original image: %v", err)
		return src.Clone()
	}
	return out
}

func preprocess(src gocv.Mat, p PreprocessParams) (out gocv.Mat, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("preprocess panic: %v", r)
		}
	}()

	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}
	if src.Channels() != 3 {
		return gocv.NewMat(), fmt.Errorf("expected 3 channels, got %d", src.Channels())
	}

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.BilateralFilter(src, &denoised, p.BilateralDiameter, p.BilateralSigma, p.BilateralSigma)
	if denoised.Empty() {
		return gocv.NewMat(), fmt.Errorf("bilateral filter produced no output")
	}

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(denoised, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()
	if len(channels) != 3 {
		return gocv.NewMat(), fmt.Errorf("expected 3 Lab channels, got %d", len(channels))
	}

	clahe := gocv.NewCLAHEWithParams(p.CLAHEClipLimit, image.Pt(p.CLAHETileGrid, p.CLAHETileGrid))
	defer clahe.Close()

	lightness := gocv.NewMat()
	clahe.Apply(channels[0], &lightness)
	channels[0].Close()
	channels[0] = lightness

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(channels, &merged)

	out = gocv.NewMat()
	gocv.CvtColor(merged, &out, gocv.ColorLabToBGR)
	if out.Empty() {
		out.Close()
		return gocv.NewMat(), fmt.Errorf("color conversion produced no output")
	}
	return out, nil
}

// PreprocessImage is Preprocess for image.Image inputs. On any failure the
// original image is returned unchanged.
func PreprocessImage(img image.Image, p PreprocessParams) image.Image {
	src, err := ToMat(img)
	if err != nil {
		log.Printf("warning: preprocessing failed, using original image: %v", err)
		return img
	}
	defer src.Close()

	out := Preprocess(src, p)
	defer out.Close()

	result, err := FromMat(out)
	if err != nil {
		log.Printf("warning: preprocessing failed, using original image: %v", err)
		return img
	}
	return result
}
