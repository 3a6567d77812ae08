package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists results and uploads in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite store: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS recipe_results (
			job_id     TEXT PRIMARY KEY,
			recipe     TEXT NOT NULL,
			markdown   TEXT NOT NULL,
			text       TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS recipe_uploads (
			upload_id   TEXT PRIMARY KEY,
			source_type TEXT NOT NULL,
			source_url  TEXT,
			filename    TEXT NOT NULL,
			size_bytes  INTEGER NOT NULL,
			created_at  TEXT NOT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) PutResult(ctx context.Context, jobID string, res JobResult) error {
	data, err := json.Marshal(res.Recipe)
	if err != nil {
		return fmt.Errorf("sqlite store: encode recipe: %w", err)
	}
	out, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO recipe_results (job_id, recipe, markdown, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, string(data), res.Markdown, res.Text, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite store: insert result: %w", err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return ErrResultExists
	}
	return nil
}

func (s *SQLiteStore) GetResult(ctx context.Context, jobID string) (JobResult, bool, error) {
	var res JobResult
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT recipe, markdown, text FROM recipe_results WHERE job_id = ?`, jobID,
	).Scan(&data, &res.Markdown, &res.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return JobResult{}, false, nil
	}
	if err != nil {
		return JobResult{}, false, fmt.Errorf("sqlite store: get result: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &res.Recipe); err != nil {
		return JobResult{}, false, fmt.Errorf("sqlite store: decode recipe: %w", err)
	}
	return res, true, nil
}

func (s *SQLiteStore) PutUpload(ctx context.Context, uploadID string, rec UploadRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipe_uploads (upload_id, source_type, source_url, filename, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uploadID, string(rec.SourceType), rec.SourceURL, rec.Filename, rec.SizeBytes,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite store: insert upload: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUpload(ctx context.Context, uploadID string) (UploadRecord, bool, error) {
	var rec UploadRecord
	var sourceType, createdAt string
	var sourceURL sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT source_type, source_url, filename, size_bytes, created_at FROM recipe_uploads WHERE upload_id = ?`,
		uploadID,
	).Scan(&sourceType, &sourceURL, &rec.Filename, &rec.SizeBytes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return UploadRecord{}, false, nil
	}
	if err != nil {
		return UploadRecord{}, false, fmt.Errorf("sqlite store: get upload: %w", err)
	}
	rec.SourceType = SourceType(sourceType)
	rec.SourceURL = sourceURL.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return rec, true, nil
}
