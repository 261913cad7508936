// Package jobs processes stored maps in the background.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/pipeline"
	"github.com/ironsheep/map-georef/internal/store"
)

// ErrNotUploaded is returned when a map is already processing or processed.
var ErrNotUploaded = errors.New("map is not in uploaded state")

// Processor runs the pipeline over a loaded image.
type Processor interface {
	Process(ctx context.Context, img image.Image, opts pipeline.Options, progress pipeline.ProgressFunc) (*pipeline.Report, error)
}

// Loader resolves a stored map path to an image.
type Loader interface {
	Load(path string) (image.Image, error)
}

// Manager moves records through uploaded -> processing -> completed or
// failed.
type Manager struct {
	store     *store.Store
	processor Processor
	loader    Loader
	wg        sync.WaitGroup
}

// NewManager creates a job manager.
func NewManager(st *store.Store, processor Processor, loader Loader) *Manager {
	return &Manager{store: st, processor: processor, loader: loader}
}

// Start marks the record as processing and runs the pipeline in a
// goroutine. Poll the store for progress.
func (m *Manager) Start(id string, opts pipeline.Options) (store.Record, error) {
	rec, err := m.claim(id)
	if err != nil {
		return rec, err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(context.Background(), rec, opts)
	}()
	return rec, nil
}

// Run processes the record synchronously and returns its final state.
func (m *Manager) Run(ctx context.Context, id string, opts pipeline.Options) (store.Record, error) {
	rec, err := m.claim(id)
	if err != nil {
		return rec, err
	}
	m.run(ctx, rec, opts)
	return m.store.Get(id)
}

// Wait blocks until every started job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) claim(id string) (store.Record, error) {
	return m.store.Update(id, func(r *store.Record) error {
		if r.Status != store.StatusUploaded {
			return fmt.Errorf("%w: %s is %s", ErrNotUploaded, id, r.Status)
		}
		now := time.Now().UTC()
		r.Status = store.StatusProcessing
		r.ProcessingStartedAt = &now
		r.Progress = 0
		r.CurrentStep = "queued"
		r.Error = ""
		return nil
	})
}

func (m *Manager) run(ctx context.Context, rec store.Record, opts pipeline.Options) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Job %s] panic recovered: %v", short(rec.ID), r)
			m.fail(rec.ID, fmt.Errorf("processing panicked: %v", r), nil)
		}
	}()

	start := time.Now()
	if config.Debug() {
		log.Printf("[Job %s] processing %s", short(rec.ID), rec.Filename)
	}

	img, err := m.loader.Load(rec.Path)
	if err != nil {
		m.fail(rec.ID, err, nil)
		return
	}

	report, err := m.processor.Process(ctx, img, opts, func(percent int, step string) {
		m.store.Update(rec.ID, func(r *store.Record) error {
			r.Progress = percent
			r.CurrentStep = step
			return nil
		})
	})
	if err != nil {
		m.fail(rec.ID, err, report)
		return
	}

	m.store.Update(rec.ID, func(r *store.Record) error {
		now := time.Now().UTC()
		r.Status = store.StatusCompleted
		r.Progress = pipeline.ProgressDone
		r.CurrentStep = "done"
		r.ProcessedAt = &now
		r.Analysis = report.Analysis
		r.Georeference = report.Georeference
		return nil
	})

	if config.Debug() {
		log.Printf("[Job %s] completed in %v", short(rec.ID), time.Since(start))
	}
}

func (m *Manager) fail(id string, err error, partial *pipeline.Report) {
	log.Printf("warning: [Job %s] failed: %v", short(id), err)
	m.store.Update(id, func(r *store.Record) error {
		now := time.Now().UTC()
		r.Status = store.StatusFailed
		r.Error = err.Error()
		r.ProcessedAt = &now
		if partial != nil {
			r.Analysis = partial.Analysis
		}
		return nil
	})
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
