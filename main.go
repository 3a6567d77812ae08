// go_recipe — video-to-recipe extraction MCP server.
//
// Registers a source (recipe_upload), runs extraction jobs asynchronously
// (recipe_job_start / status / events / result) and offers one-shot
// extraction (recipe_extract). Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_recipe/internal/engine"
	"github.com/anatolykoptev/go_recipe/internal/engine/jobs"
	"github.com/anatolykoptev/go_recipe/internal/engine/sources"
	"github.com/anatolykoptev/go_recipe/internal/jobserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	results, uploads, closeStore := initStores()
	defer closeStore()

	orch := jobs.New(results, uploads, sources.Extractor{}, jobs.Options{})
	defer orch.Close()

	slog.Info("starting go_recipe",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_recipe",
		Version: version,
	}, nil)

	jobserver.RegisterTools(server, &jobserver.Service{
		Orchestrator: orch,
		Uploads:      jobs.NewUploads(uploads, initPresigner()),
		Extractor:    sources.Extractor{},
	})
	slog.Info("tools registered", slog.Int("count", jobserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_recipe",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 10*time.Second),
		FetchRPS:             env.Float("FETCH_RPS", 5),
		MaxPageBytes:         int64(env.Int("MAX_PAGE_BYTES", 6*1024*1024)),
		TimedTextURL:         env.Str("TIMEDTEXT_URL", engine.DefaultTimedTextURL),
		UploadBaseURL:        env.Str("UPLOAD_BASE_URL", engine.DefaultUploadBaseURL),
		UploadURLExpiry:      env.Duration("UPLOAD_URL_EXPIRY", 15*time.Minute),
		JobTimeout:           env.Duration("JOB_TIMEOUT", 2*time.Minute),
		MaxConcurrentJobs:    env.Int("MAX_CONCURRENT_JOBS", 4),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 30*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

// initStores picks the result/upload store: PostgreSQL when DATABASE_URL is
// set, SQLite when RESULTS_DB_PATH is set, otherwise process memory.
func initStores() (jobs.ResultStore, jobs.UploadStore, func()) {
	if dbURL := env.Str("DATABASE_URL", ""); dbURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pg, err := jobs.ConnectPostgresStore(ctx, dbURL)
		if err != nil {
			slog.Warn("postgres store init failed, falling back", slog.Any("error", err))
		} else {
			slog.Info("store: postgres")
			return pg, pg, pg.Close
		}
	}

	if path := env.Str("RESULTS_DB_PATH", ""); path != "" {
		sq, err := jobs.OpenSQLiteStore(path)
		if err != nil {
			slog.Warn("sqlite store init failed, using memory", slog.Any("error", err))
		} else {
			slog.Info("store: sqlite", slog.String("path", path))
			return sq, sq, func() { _ = sq.Close() }
		}
	}

	slog.Info("store: memory")
	mem := jobs.NewMemoryStore()
	return mem, mem, func() {}
}

// initPresigner returns an S3 presigner when UPLOAD_S3_BUCKET is set. nil
// keeps the mock hand-off under UPLOAD_BASE_URL.
func initPresigner() jobs.Presigner {
	bucket := env.Str("UPLOAD_S3_BUCKET", "")
	if bucket == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p, err := jobs.NewS3Presigner(ctx, jobs.S3Config{
		Bucket:          bucket,
		Prefix:          env.Str("UPLOAD_S3_PREFIX", "uploads"),
		Region:          env.Str("UPLOAD_S3_REGION", ""),
		Endpoint:        env.Str("UPLOAD_S3_ENDPOINT", ""),
		AccessKeyID:     env.Str("UPLOAD_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.Str("UPLOAD_S3_SECRET_ACCESS_KEY", ""),
		ForcePathStyle:  env.Str("UPLOAD_S3_PATH_STYLE", "") == "true",
	})
	if err != nil {
		slog.Warn("s3 presigner init failed, using mock upload targets", slog.Any("error", err))
		return nil
	}
	slog.Info("uploads: s3 presigned", slog.String("bucket", bucket))
	return p
}
