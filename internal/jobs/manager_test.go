package jobs

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/map-georef/internal/model"
	"github.com/ironsheep/map-georef/internal/pipeline"
	"github.com/ironsheep/map-georef/internal/store"
)

type fakeLoader struct {
	err error
}

func (f fakeLoader) Load(path string) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil
}

type fakeProcessor struct {
	err   error
	block chan struct{}
}

func (f *fakeProcessor) Process(ctx context.Context, img image.Image, opts pipeline.Options, progress pipeline.ProgressFunc) (*pipeline.Report, error) {
	if f.block != nil {
		<-f.block
	}
	progress(pipeline.ProgressLoaded, "loaded")
	progress(pipeline.ProgressAnalyzed, "analysis")
	report := &pipeline.Report{Analysis: &model.AnalysisResult{Width: 10, Height: 10, Success: true}}
	if f.err != nil {
		return report, f.err
	}
	report.Georeference = &model.GeoreferenceResult{Success: true, Method: model.MethodSimpleEstimation}
	return report, nil
}

func newRecord(t *testing.T, st *store.Store) store.Record {
	t.Helper()
	rec, err := st.Save("map.png", []byte("png"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return rec
}

func TestStartCompletes(t *testing.T) {
	st := store.New(t.TempDir())
	rec := newRecord(t, st)
	m := NewManager(st, &fakeProcessor{}, fakeLoader{})

	started, err := m.Start(rec.ID, pipeline.DefaultOptions())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if started.Status != store.StatusProcessing || started.ProcessingStartedAt == nil {
		t.Errorf("Expected processing record, got %+v", started)
	}
	m.Wait()

	got, _ := st.Get(rec.ID)
	if got.Status != store.StatusCompleted || got.Progress != 100 {
		t.Errorf("Expected completed at 100%%, got %s at %d", got.Status, got.Progress)
	}
	if got.Analysis == nil || got.Georeference == nil || got.ProcessedAt == nil {
		t.Errorf("Expected results on the record, got %+v", got)
	}
}

func TestStartRejectsNonUploaded(t *testing.T) {
	st := store.New(t.TempDir())
	rec := newRecord(t, st)
	block := make(chan struct{})
	m := NewManager(st, &fakeProcessor{block: block}, fakeLoader{})

	if _, err := m.Start(rec.ID, pipeline.DefaultOptions()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	_, err := m.Start(rec.ID, pipeline.DefaultOptions())
	if !errors.Is(err, ErrNotUploaded) {
		t.Errorf("Expected ErrNotUploaded, got %v", err)
	}
	close(block)
	m.Wait()

	if _, err := m.Start("missing", pipeline.DefaultOptions()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunLoadFailure(t *testing.T) {
	st := store.New(t.TempDir())
	rec := newRecord(t, st)
	m := NewManager(st, &fakeProcessor{}, fakeLoader{err: errors.New("corrupt file")})

	got, err := m.Run(context.Background(), rec.ID, pipeline.DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.Status != store.StatusFailed || got.Error != "corrupt file" {
		t.Errorf("Expected failed record, got %+v", got)
	}
}

func TestRunProcessingFailureKeepsAnalysis(t *testing.T) {
	st := store.New(t.TempDir())
	rec := newRecord(t, st)
	m := NewManager(st, &fakeProcessor{err: errors.New("homography computation failed")}, fakeLoader{})

	got, err := m.Run(context.Background(), rec.ID, pipeline.DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.Status != store.StatusFailed {
		t.Errorf("Expected failed, got %s", got.Status)
	}
	if got.Analysis == nil {
		t.Error("Expected the partial analysis to be kept")
	}
	if got.Progress != pipeline.ProgressAnalyzed {
		t.Errorf("Expected progress to stop at %d, got %d", pipeline.ProgressAnalyzed, got.Progress)
	}
}
