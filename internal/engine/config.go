package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	FetchTimeout    time.Duration
	FetchRPS        float64 // outbound page/caption requests per second (0 = unlimited)
	MaxPageBytes    int64
	TimedTextURL    string // legacy captions endpoint, queried with ?lang=&v=
	UploadBaseURL   string // base of the mock pre-signed upload target
	UploadURLExpiry time.Duration

	JobTimeout        time.Duration
	MaxConcurrentJobs int

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = no Chrome-TLS retry for blocked pages
}

// Defaults used when a Config field is left zero.
const (
	DefaultTimedTextURL  = "https://video.google.com/timedtext"
	DefaultUploadBaseURL = "https://uploads.local/recipes"
	defaultMaxPageBytes  = 6 * 1024 * 1024
)

var cfg = withDefaults(Config{})

// Cfg exposes the engine configuration for sub-packages (sources, jobs).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = withDefaults(c)
	Cfg = &cfg
	initLimiter(cfg.FetchRPS)
}

func withDefaults(c Config) Config {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.MaxPageBytes <= 0 {
		c.MaxPageBytes = defaultMaxPageBytes
	}
	if c.TimedTextURL == "" {
		c.TimedTextURL = DefaultTimedTextURL
	}
	if c.UploadBaseURL == "" {
		c.UploadBaseURL = DefaultUploadBaseURL
	}
	if c.UploadURLExpiry <= 0 {
		c.UploadURLExpiry = 15 * time.Minute
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 2 * time.Minute
	}
	if c.MaxConcurrentJobs <= 0 {
		c.MaxConcurrentJobs = 4
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}
