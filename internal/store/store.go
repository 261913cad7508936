// Package store keeps uploaded map records in memory.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/map-georef/internal/model"
)

// Status is the processing state of a map record.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrNotFound is returned for an unknown map id.
var ErrNotFound = errors.New("map not found")

// Record is one uploaded map and everything processing produced for it.
type Record struct {
	ID                  string                    `json:"id" msgpack:"id"`
	Filename            string                    `json:"filename" msgpack:"filename"`
	Path                string                    `json:"-" msgpack:"-"`
	SizeBytes           int64                     `json:"size_bytes" msgpack:"size_bytes"`
	Status              Status                    `json:"status" msgpack:"status"`
	UploadedAt          time.Time                 `json:"uploaded_at" msgpack:"uploaded_at"`
	ProcessingStartedAt *time.Time                `json:"processing_started_at,omitempty" msgpack:"processing_started_at,omitempty"`
	ProcessedAt         *time.Time                `json:"processed_at,omitempty" msgpack:"processed_at,omitempty"`
	Progress            int                       `json:"progress" msgpack:"progress"`
	CurrentStep         string                    `json:"current_step,omitempty" msgpack:"current_step,omitempty"`
	Analysis            *model.AnalysisResult     `json:"analysis,omitempty" msgpack:"analysis,omitempty"`
	Georeference        *model.GeoreferenceResult `json:"georeference,omitempty" msgpack:"georeference,omitempty"`
	Error               string                    `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Store is a concurrency-safe record table. Get and List return copies;
// changes go through Update.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	dir     string
}

// New creates a store that writes uploads under dir.
func New(dir string) *Store {
	return &Store{
		records: make(map[string]*Record),
		dir:     dir,
	}
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes an upload to disk under a fresh id and registers it.
func (s *Store) Save(filename string, data []byte) (Record, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return Record{}, fmt.Errorf("failed to create upload dir: %w", err)
	}

	id := uuid.New().String()
	path := filepath.Join(s.dir, id+strings.ToLower(filepath.Ext(filename)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return Record{}, fmt.Errorf("failed to save upload: %w", err)
	}

	return s.add(id, filename, path, int64(len(data))), nil
}

// Register adds a record for a file that is already on disk.
func (s *Store) Register(filename, path string) (Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to stat map: %w", err)
	}
	return s.add(uuid.New().String(), filename, path, info.Size()), nil
}

func (s *Store) add(id, filename, path string, size int64) Record {
	rec := &Record{
		ID:         id,
		Filename:   filename,
		Path:       path,
		SizeBytes:  size,
		Status:     StatusUploaded,
		UploadedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.records[id] = rec
	s.mu.Unlock()

	return *rec
}

// Get returns a copy of the record.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *rec, nil
}

// List returns copies of all records, oldest first.
func (s *Store) List() []Record {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out
}

// Update applies fn to the record under the write lock. If fn returns an
// error the record is left unchanged.
func (s *Store) Update(id string, fn func(*Record) error) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated := *rec
	if err := fn(&updated); err != nil {
		return *rec, err
	}
	*rec = updated
	return updated, nil
}

// Delete removes the record and its file.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	delete(s.records, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove map file: %w", err)
	}
	return nil
}
