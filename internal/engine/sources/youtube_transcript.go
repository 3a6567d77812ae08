package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_recipe/internal/engine"
)

// Caption retrieval. Every attempt fails silently into the next one:
//  1. watch page player state → preferred caption track → cue-based (VTT) captions
//  2. same track without the format hint → tag-delimited <text>/<p> items
//  3. legacy timedtext endpoint for a fixed list of language codes

// legacyLanguages are tried in order against Config.TimedTextURL.
var legacyLanguages = []string{"en", "en-US", "en-GB", "es", "es-419"}

// captionItemRE matches one <text …>…</text> or <p …>…</p> caption item.
var captionItemRE = regexp.MustCompile(`(?s)<(text|p)\b[^>]*>(.*?)</(?:text|p)>`)

var errNoCaptions = errors.New("no caption tracks")

// RetrieveTranscript returns the transcript of the video at rawURL, or "" when
// no strategy produced text. It never fails.
func RetrieveTranscript(ctx context.Context, rawURL string) string {
	videoID := ExtractVideoID(rawURL)
	if videoID == "" {
		slog.Debug("transcript: no video id in url", slog.String("url", rawURL))
		return ""
	}
	engine.IncrTranscript()

	cacheKey := engine.CacheKey("transcript", videoID)
	if cached, ok := engine.CacheGet(ctx, cacheKey); ok {
		return cached
	}

	var text string
	err := engine.TrackOperation(ctx, "caption_track", func(ctx context.Context) error {
		var err error
		text, err = transcriptFromPage(ctx, rawURL)
		return err
	})
	if err != nil {
		slog.Warn("transcript: caption track failed, trying legacy endpoint",
			slog.String("id", videoID), slog.Any("error", err))
		text = transcriptFromLegacy(ctx, videoID)
	}

	if text == "" {
		engine.IncrTranscriptMiss()
		slog.Warn("transcript: all strategies exhausted", slog.String("id", videoID))
		return ""
	}
	engine.CacheSet(ctx, cacheKey, text)
	return text
}

// transcriptFromPage is the primary path: discover caption tracks on the page
// and read the preferred one, cue format first.
func transcriptFromPage(ctx context.Context, pageURL string) (string, error) {
	page, err := engine.FetchText(ctx, pageURL, engine.FetchOpts{})
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}
	player, ok := findPlayerResponse(page)
	if !ok {
		return "", errors.New("player response not found")
	}
	track, ok := pickTrack(player.tracks())
	if !ok {
		return "", errNoCaptions
	}
	slog.Debug("transcript: picked track",
		slog.String("lang", track.LanguageCode), slog.String("kind", track.Kind))

	if text, err := fetchCaptions(ctx, withFormat(track.BaseURL, "vtt")); err != nil {
		slog.Debug("transcript: vtt fetch failed", slog.Any("error", err))
	} else if text = engine.VTTToText(text); text != "" {
		return text, nil
	}

	body, err := fetchCaptions(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("caption track: %w", err)
	}
	if text := ParseCaptionItems(body); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("caption track %s: empty", track.LanguageCode)
}

// transcriptFromLegacy queries the legacy timedtext endpoint per language.
func transcriptFromLegacy(ctx context.Context, videoID string) string {
	for _, lang := range legacyLanguages {
		q := url.Values{"lang": {lang}, "v": {videoID}}
		body, err := fetchCaptions(ctx, engine.Cfg.TimedTextURL+"?"+q.Encode())
		if err != nil {
			if !engine.IsNotFound(err) {
				slog.Warn("transcript: legacy fetch failed", slog.String("lang", lang), slog.Any("error", err))
			}
			continue
		}
		if text := ParseCaptionItems(body); text != "" {
			return text
		}
	}
	return ""
}

func fetchCaptions(ctx context.Context, captionURL string) (string, error) {
	return engine.FetchText(ctx, captionURL, engine.FetchOpts{
		Accept:    "text/vtt,application/xml,text/xml;q=0.9,*/*;q=0.8",
		UserAgent: engine.UserAgentBot,
	})
}

// ParseCaptionItems joins the text of every <text> or <p> item in a
// tag-delimited caption document into one whitespace-normalised line.
func ParseCaptionItems(doc string) string {
	var parts []string
	for _, m := range captionItemRE.FindAllStringSubmatch(doc, -1) {
		// Entities may be double-encoded (&amp;#39;), so decode after stripping tags.
		text := engine.DecodeEntities(engine.DecodeEntities(engine.CleanHTML(m[2])))
		if text = engine.NormalizeSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return engine.NormalizeSpace(strings.Join(parts, " "))
}

// withFormat adds or replaces the fmt query parameter.
func withFormat(baseURL, format string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		if strings.Contains(baseURL, "?") {
			return baseURL + "&fmt=" + format
		}
		return baseURL + "?fmt=" + format
	}
	q := u.Query()
	q.Set("fmt", format)
	u.RawQuery = q.Encode()
	return u.String()
}
