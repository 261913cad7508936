// Package pipeline runs map analysis and georeferencing end to end.
//
// Analyzer covers preprocessing, scale and legend detection, feature
// segmentation and OCR. The detectors are independent and run concurrently
// on a bounded pool; each writes its own slot, so the result is the same
// as a sequential run. Pipeline adds georeferencing on top.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/detection"
	"github.com/ironsheep/map-georef/internal/imaging"
	"github.com/ironsheep/map-georef/internal/model"
	"github.com/ironsheep/map-georef/internal/ocr"
)

// StepText names the OCR step in diagnostics.
const StepText = "text"

// Analyzer turns one image into an AnalysisResult. It holds immutable
// configuration only.
type Analyzer struct {
	params       detection.Params
	text         *ocr.TextExtractor
	workers      int
	maxDimension int
}

// NewAnalyzer builds an analyzer around an OCR engine.
func NewAnalyzer(cfg *config.Config, engine ocr.Recognizer) *Analyzer {
	workers := cfg.Analysis.Workers
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{
		params:       cfg.Detection,
		text:         ocr.NewTextExtractor(engine, cfg.OCR.Language, cfg.OCR.MinConfidence),
		workers:      workers,
		maxDimension: cfg.Limits.MaxImageDimension,
	}
}

// Analyze runs steps 1-6 over img.
//
// Only an unusable image is an error (*imaging.ImageLoadError); detector
// and OCR failures leave their slot empty and add a diagnostic.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image) (*model.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, &imaging.ImageLoadError{Err: fmt.Errorf("no image")}
	}

	b := img.Bounds()
	if a.maxDimension > 0 && (b.Dx() > a.maxDimension || b.Dy() > a.maxDimension) {
		log.Printf("warning: image %dx%d exceeds the recommended %d px", b.Dx(), b.Dy(), a.maxDimension)
	}

	src, err := imaging.ToMat(img)
	if err != nil {
		return nil, &imaging.ImageLoadError{Err: err}
	}
	defer src.Close()

	pre := imaging.Preprocess(src, detection.PreprocessParams(a.params))
	defer pre.Close()

	ocrInput := image.Image(img)
	if converted, err := imaging.FromMat(pre); err == nil {
		ocrInput = converted
	} else {
		log.Printf("warning: OCR falls back to the raw image: %v", err)
	}

	var (
		scale    model.ScaleInfo
		legend   model.LegendInfo
		outcomes = make([]detection.Outcome, len(detection.FeatureDetectors))
		texts    []model.MapElement
		textErr  error
	)

	var g errgroup.Group
	g.SetLimit(a.workers)
	g.Go(func() error {
		scale = detection.DetectScale(pre, a.params)
		return nil
	})
	g.Go(func() error {
		legend = detection.DetectLegend(pre, a.params)
		return nil
	})
	for i, detect := range detection.FeatureDetectors {
		g.Go(func() error {
			outcomes[i] = detect(pre, a.params)
			return nil
		})
	}
	g.Go(func() error {
		texts, textErr = a.text.Extract(ocrInput)
		return nil
	})
	g.Wait()

	elements, diagnostics := detection.Reduce(outcomes)
	if scale.Error != "" {
		diagnostics = append(diagnostics, model.Diagnostic{Step: detection.DetectorScale, Error: scale.Error})
	}
	if legend.Error != "" {
		diagnostics = append(diagnostics, model.Diagnostic{Step: detection.DetectorLegend, Error: legend.Error})
	}
	if textErr != nil {
		log.Printf("warning: %v", textErr)
		diagnostics = append(diagnostics, model.Diagnostic{Step: StepText, Error: textErr.Error()})
	} else {
		elements = append(elements, texts...)
	}

	if config.Debug() {
		log.Printf("analysis: %d elements, scale=%v legend=%v", len(elements), scale.Detected, legend.Detected)
	}

	return &model.AnalysisResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		Scale:       scale,
		Legend:      legend,
		Elements:    elements,
		Success:     true,
		Diagnostics: diagnostics,
	}, nil
}
