package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/anatolykoptev/go_recipe/internal/engine/recipe"
)

// ErrResultExists is returned when a result is written twice for one job.
var ErrResultExists = errors.New("result already stored")

// JobResult is the published outcome of a job. It is written once and never
// modified afterwards.
type JobResult struct {
	Recipe   recipe.Recipe `json:"recipe"`
	Markdown string        `json:"markdown"`
	Text     string        `json:"text"`
}

// SourceType says where an upload's content comes from.
type SourceType string

const (
	SourceFile SourceType = "file"
	SourceURL  SourceType = "url"
)

// UploadRecord is the immutable registration of one source.
type UploadRecord struct {
	SourceType SourceType `json:"source_type"`
	SourceURL  string     `json:"source_url,omitempty"`
	Filename   string     `json:"filename"`
	SizeBytes  int64      `json:"size_bytes"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ResultStore holds published job results.
type ResultStore interface {
	// PutResult stores res under jobID. A second write for the same id fails
	// with ErrResultExists and leaves the first value in place.
	PutResult(ctx context.Context, jobID string, res JobResult) error
	GetResult(ctx context.Context, jobID string) (JobResult, bool, error)
}

// UploadStore holds upload registrations.
type UploadStore interface {
	PutUpload(ctx context.Context, uploadID string, rec UploadRecord) error
	GetUpload(ctx context.Context, uploadID string) (UploadRecord, bool, error)
}

// MemoryStore keeps results and uploads in process memory.
type MemoryStore struct {
	results sync.Map // jobID → JobResult
	uploads sync.Map // uploadID → UploadRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) PutResult(_ context.Context, jobID string, res JobResult) error {
	if _, loaded := m.results.LoadOrStore(jobID, res); loaded {
		return ErrResultExists
	}
	return nil
}

func (m *MemoryStore) GetResult(_ context.Context, jobID string) (JobResult, bool, error) {
	v, ok := m.results.Load(jobID)
	if !ok {
		return JobResult{}, false, nil
	}
	return v.(JobResult), true, nil
}

func (m *MemoryStore) PutUpload(_ context.Context, uploadID string, rec UploadRecord) error {
	m.uploads.Store(uploadID, rec)
	return nil
}

func (m *MemoryStore) GetUpload(_ context.Context, uploadID string) (UploadRecord, bool, error) {
	v, ok := m.uploads.Load(uploadID)
	if !ok {
		return UploadRecord{}, false, nil
	}
	return v.(UploadRecord), true, nil
}
