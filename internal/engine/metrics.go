package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	FetchRequests      atomic.Int64
	FetchErrors        atomic.Int64
	BrowserFetches     atomic.Int64
	SourceResolves     atomic.Int64
	TranscriptRequests atomic.Int64
	TranscriptMisses   atomic.Int64
	JobsStarted        atomic.Int64
	JobsCompleted      atomic.Int64
	JobsFailed         atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"browser_fetches":     metrics.BrowserFetches.Load(),
		"source_resolves":     metrics.SourceResolves.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_misses":   metrics.TranscriptMisses.Load(),
		"jobs_started":        metrics.JobsStarted.Load(),
		"jobs_completed":      metrics.JobsCompleted.Load(),
		"jobs_failed":         metrics.JobsFailed.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"fetch_requests", "fetch_errors", "browser_fetches",
		"source_resolves", "transcript_requests", "transcript_misses",
		"jobs_started", "jobs_completed", "jobs_failed",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ and jobs/ sub-packages.
func IncrSourceResolve()  { metrics.SourceResolves.Add(1) }
func IncrTranscript()     { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptMiss() { metrics.TranscriptMisses.Add(1) }
func IncrJobsStarted()    { metrics.JobsStarted.Add(1) }
func IncrJobsCompleted()  { metrics.JobsCompleted.Add(1) }
func IncrJobsFailed()     { metrics.JobsFailed.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
