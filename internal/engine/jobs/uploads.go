package jobs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anatolykoptev/go_recipe/internal/engine"
	"github.com/google/uuid"
)

// ErrInvalidInput marks requests rejected before any work starts.
var ErrInvalidInput = errors.New("invalid input")

// Descriptor describes a source to register.
type Descriptor struct {
	SourceType SourceType `json:"source_type"`
	SourceURL  string     `json:"source_url,omitempty"`
	Filename   string     `json:"filename"`
	SizeBytes  int64      `json:"size_bytes"`
}

// StorageHandoff is where a client would PUT file content: a pre-signed S3
// URL when a bucket is configured, otherwise a mock target.
type StorageHandoff struct {
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Upload is the result of a registration.
type Upload struct {
	UploadID       string         `json:"upload_id"`
	StorageHandoff StorageHandoff `json:"storage_handoff"`
}

// Presigner produces the hand-off target for one upload object. key is
// "<upload id>/<file name>"; size is zero for URL sources.
type Presigner interface {
	PresignPut(ctx context.Context, key string, size int64, expiresAt time.Time) (StorageHandoff, error)
}

// Uploads registers sources for later lookup by StartJob.
type Uploads struct {
	store   UploadStore
	presign Presigner
	now     func() time.Time
}

// NewUploads builds the upload registry. A nil presigner selects the mock
// target under Cfg.UploadBaseURL.
func NewUploads(store UploadStore, presign Presigner) *Uploads {
	if presign == nil {
		presign = MockPresigner{}
	}
	return &Uploads{store: store, presign: presign, now: time.Now}
}

// Validate checks a descriptor: a file needs a name and a positive size, a
// URL needs a non-negative size and an absolute http(s) address.
func (d Descriptor) Validate() error {
	switch d.SourceType {
	case SourceFile:
		if strings.TrimSpace(d.Filename) == "" {
			return fmt.Errorf("%w: filename is required for file uploads", ErrInvalidInput)
		}
		if d.SizeBytes <= 0 {
			return fmt.Errorf("%w: size_bytes must be positive for file uploads", ErrInvalidInput)
		}
	case SourceURL:
		if d.SizeBytes < 0 {
			return fmt.Errorf("%w: size_bytes must not be negative", ErrInvalidInput)
		}
		if err := ValidateSourceURL(d.SourceURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: source_type must be %q or %q", ErrInvalidInput, SourceFile, SourceURL)
	}
	return nil
}

// ValidateSourceURL accepts absolute http and https URLs with a host.
func ValidateSourceURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: source_url: %v", ErrInvalidInput, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: source_url must be an absolute http(s) URL", ErrInvalidInput)
	}
	return nil
}

// CreateUpload validates d, stores it under a fresh id and returns the
// storage hand-off.
func (u *Uploads) CreateUpload(ctx context.Context, d Descriptor) (Upload, error) {
	if err := d.Validate(); err != nil {
		return Upload{}, err
	}

	id := uuid.NewString()
	now := u.now().UTC()
	rec := UploadRecord{
		SourceType: d.SourceType,
		SourceURL:  strings.TrimSpace(d.SourceURL),
		Filename:   d.Filename,
		SizeBytes:  d.SizeBytes,
		CreatedAt:  now,
	}
	if err := u.store.PutUpload(ctx, id, rec); err != nil {
		return Upload{}, fmt.Errorf("store upload: %w", err)
	}

	name := rec.Filename
	if name == "" {
		name = "source"
	}
	expires := now.Add(engine.Cfg.UploadURLExpiry)
	h, err := u.presign.PresignPut(ctx, id+"/"+name, rec.SizeBytes, expires)
	if err != nil {
		return Upload{}, fmt.Errorf("presign upload: %w", err)
	}
	h.ExpiresAt = expires
	return Upload{UploadID: id, StorageHandoff: h}, nil
}

// MockPresigner signs nothing: it points at Cfg.UploadBaseURL and nothing in
// this service reads from there.
type MockPresigner struct{}

func (MockPresigner) PresignPut(_ context.Context, key string, size int64, expiresAt time.Time) (StorageHandoff, error) {
	id, name, _ := strings.Cut(key, "/")
	q := url.Values{
		"expires": {fmt.Sprint(expiresAt.Unix())},
		"upload":  {id},
	}
	target := strings.TrimRight(engine.Cfg.UploadBaseURL, "/") + "/" + id + "/" + url.PathEscape(name) + "?" + q.Encode()

	headers := map[string]string{}
	if size > 0 {
		headers["Content-Length"] = fmt.Sprint(size)
	}
	return StorageHandoff{Method: http.MethodPut, URL: target, Headers: headers, ExpiresAt: expiresAt}, nil
}
