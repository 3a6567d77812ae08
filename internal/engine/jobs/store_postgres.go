package jobs

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var migrationsFS embed.FS

// PostgresStore persists results and uploads in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgresStore creates a pgx pool and runs schema migrations.
func ConnectPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("recipe postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := migrationsFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Debug("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

func (s *PostgresStore) PutResult(ctx context.Context, jobID string, res JobResult) error {
	data, err := json.Marshal(res.Recipe)
	if err != nil {
		return fmt.Errorf("encode recipe: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO recipe_results (job_id, recipe, markdown, text) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (job_id) DO NOTHING`,
		jobID, string(data), res.Markdown, res.Text)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrResultExists
	}
	return nil
}

func (s *PostgresStore) GetResult(ctx context.Context, jobID string) (JobResult, bool, error) {
	var res JobResult
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT recipe, markdown, text FROM recipe_results WHERE job_id = $1`, jobID,
	).Scan(&data, &res.Markdown, &res.Text)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobResult{}, false, nil
	}
	if err != nil {
		return JobResult{}, false, fmt.Errorf("get result: %w", err)
	}
	if err := json.Unmarshal(data, &res.Recipe); err != nil {
		return JobResult{}, false, fmt.Errorf("decode recipe: %w", err)
	}
	return res, true, nil
}

func (s *PostgresStore) PutUpload(ctx context.Context, uploadID string, rec UploadRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO recipe_uploads (upload_id, source_type, source_url, filename, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uploadID, string(rec.SourceType), rec.SourceURL, rec.Filename, rec.SizeBytes, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUpload(ctx context.Context, uploadID string) (UploadRecord, bool, error) {
	var rec UploadRecord
	var sourceType string
	var sourceURL *string
	err := s.pool.QueryRow(ctx,
		`SELECT source_type, source_url, filename, size_bytes, created_at FROM recipe_uploads WHERE upload_id = $1`,
		uploadID,
	).Scan(&sourceType, &sourceURL, &rec.Filename, &rec.SizeBytes, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return UploadRecord{}, false, nil
	}
	if err != nil {
		return UploadRecord{}, false, fmt.Errorf("get upload: %w", err)
	}
	rec.SourceType = SourceType(sourceType)
	if sourceURL != nil {
		rec.SourceURL = *sourceURL
	}
	return rec, true, nil
}
