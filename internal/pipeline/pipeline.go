package pipeline

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/crs"
	"github.com/ironsheep/map-georef/internal/geocode"
	"github.com/ironsheep/map-georef/internal/georef"
	"github.com/ironsheep/map-georef/internal/model"
	"github.com/ironsheep/map-georef/internal/ocr"
)

// Progress checkpoints reported by Process.
const (
	ProgressLoaded        = 10
	ProgressAnalyzed      = 60
	ProgressGeoreferenced = 90
	ProgressDone          = 100
)

// ErrAnalysisRequired is returned when georeferencing is requested without
// analysis.
var ErrAnalysisRequired = errors.New("georeferencing requires analysis")

// Pipeline wires the Analyzer and the Georeferencer. Construct it once and
// share it; runs over different images do not interfere.
type Pipeline struct {
	analyzer      *Analyzer
	georeferencer *georef.Georeferencer
	defaultTarget string
}

// New builds a pipeline from its external collaborators.
func New(cfg *config.Config, engine ocr.Recognizer, geocoder geocode.Geocoder, transformer crs.Transformer) *Pipeline {
	return &Pipeline{
		analyzer:      NewAnalyzer(cfg, engine),
		georeferencer: georef.New(cfg, geocoder, transformer),
		defaultTarget: cfg.CRS.DefaultTarget,
	}
}

// Analyze runs the analysis stage.
func (p *Pipeline) Analyze(ctx context.Context, img image.Image) (*model.AnalysisResult, error) {
	return p.analyzer.Analyze(ctx, img)
}

// Georeference runs the georeferencing stage for img using a previous
// analysis. An empty targetCRS selects the configured default.
func (p *Pipeline) Georeference(ctx context.Context, img image.Image, analysis *model.AnalysisResult, targetCRS string) (*model.GeoreferenceResult, error) {
	b := img.Bounds()
	return p.georeferencer.Georeference(ctx, b.Dx(), b.Dy(), analysis, targetCRS)
}

// Georeferencer exposes the georeferencing stage on its own.
func (p *Pipeline) Georeferencer() *georef.Georeferencer {
	return p.georeferencer
}

// Options selects which stages Process runs.
type Options struct {
	TargetCRS            string `json:"target_crs"`
	EnableAnalysis       bool   `json:"enable_ai_analysis"`
	EnableGeoreferencing bool   `json:"enable_georeferencing"`
}

// DefaultOptions runs both stages into the default target CRS.
func DefaultOptions() Options {
	return Options{EnableAnalysis: true, EnableGeoreferencing: true}
}

// Report is the outcome of Process. Georeference is nil when that stage
// was not requested.
type Report struct {
	Analysis     *model.AnalysisResult     `json:"analysis,omitempty" msgpack:"analysis,omitempty"`
	Georeference *model.GeoreferenceResult `json:"georeference,omitempty" msgpack:"georeference,omitempty"`
}

// ProgressFunc receives a percentage and the step that just finished.
type ProgressFunc func(percent int, step string)

// Process runs the requested stages over an already loaded image.
//
// A failed georeferencing stage keeps the analysis in the report and is
// returned as the error.
func (p *Pipeline) Process(ctx context.Context, img image.Image, opts Options, progress ProgressFunc) (*Report, error) {
	if progress == nil {
		progress = func(int, string) {}
	}
	if opts.EnableGeoreferencing && !opts.EnableAnalysis {
		return nil, ErrAnalysisRequired
	}
	progress(ProgressLoaded, "loaded")

	report := &Report{}
	if opts.EnableAnalysis {
		analysis, err := p.Analyze(ctx, img)
		if err != nil {
			return nil, err
		}
		report.Analysis = analysis
		progress(ProgressAnalyzed, "analysis")
	}

	if opts.EnableGeoreferencing {
		target := opts.TargetCRS
		if target == "" {
			target = p.defaultTarget
		}
		res, err := p.Georeference(ctx, img, report.Analysis, target)
		if err != nil {
			return report, err
		}
		report.Georeference = res
		progress(ProgressGeoreferenced, "georeferencing")
	}

	progress(ProgressDone, "done")
	return report, nil
}
