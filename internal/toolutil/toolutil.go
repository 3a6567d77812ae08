// Package toolutil provides shared helper functions for go_recipe MCP tools
// and the CLI.
package toolutil

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anatolykoptev/go_recipe/internal/engine"
)

// NormSourceType normalises an upload source type: empty means "url" when a
// URL was given and "file" otherwise.
func NormSourceType(sourceType, sourceURL string) string {
	st := strings.ToLower(strings.TrimSpace(sourceType))
	if st != "" {
		return st
	}
	if strings.TrimSpace(sourceURL) != "" {
		return "url"
	}
	return "file"
}

// NormURL trims raw and adds https:// to bare video links like "youtu.be/…".
func NormURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" || strings.Contains(u, "://") {
		return u
	}
	lower := strings.ToLower(u)
	for _, host := range []string{"youtu.be/", "youtube.com/", "www.youtube.com/", "m.youtube.com/"} {
		if strings.HasPrefix(lower, host) {
			return "https://" + u
		}
	}
	return u
}

// NormFormat maps an output format name to json, markdown or text.
func NormFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "md", "markdown":
		return "markdown"
	case "txt", "text", "plain":
		return "text"
	default:
		return "json"
	}
}

// CacheLoadJSON tries to load a cached value of type T from the engine cache.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	cached, ok := engine.CacheGet(ctx, key)
	if !ok {
		var zero T
		return zero, false
	}
	return engine.ParseJSON[T]([]byte(cached))
}

// CacheStoreJSON marshals v and stores it in the engine cache.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	engine.CacheSet(ctx, key, string(data))
}
