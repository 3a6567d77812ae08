package engine

import (
	"encoding/json"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

// User-Agent sent on caption requests, which don't need a browser identity.
const UserAgentBot = "GoRecipe/1.0"

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
	mdDecorRe    = regexp.MustCompile(`(\*\*|__|\[|\]\([^)]*\))`)
	mdEscapeRe   = regexp.MustCompile(`\\([\\*_#.+!\-\[\]()])`)
	vttTimingRe  = regexp.MustCompile(`-->`)
	vttCueIDRe   = regexp.MustCompile(`^\d+$`)
	vttInlineRe  = regexp.MustCompile(`<[^>]*>`)
	vttBlockOpen = regexp.MustCompile(`^(NOTE|STYLE|REGION)(\s|$)`)
)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// DecodeEntities resolves named, decimal and hex HTML character references.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return html.UnescapeString(s)
}

// NormalizeSpace collapses all whitespace runs to a single space and trims.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

// ParseJSON decodes data into T. Malformed input reports false instead of an error.
func ParseJSON[T any](data []byte) (T, bool) {
	var out T
	if len(data) == 0 {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// UnescapeJSONString decodes the body of a JSON string literal (without quotes).
func UnescapeJSONString(raw string) (string, bool) {
	return ParseJSON[string]([]byte(`"` + raw + `"`))
}

// HTMLToText converts an HTML fragment into line-preserving plain text.
// Falls back to tag stripping if the converter rejects the input.
func HTMLToText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return DecodeEntities(CleanHTML(fragment))
	}
	md = mdDecorRe.ReplaceAllString(md, "")
	return strings.TrimSpace(mdEscapeRe.ReplaceAllString(md, "$1"))
}

// VTTToText converts a WEBVTT caption document into a single line of text.
// Header, NOTE/STYLE blocks, timings and numeric cue ids are dropped; inline cue
// markup is stripped and consecutive duplicate lines (rolling captions) collapse.
func VTTToText(vtt string) string {
	vtt = strings.ReplaceAll(strings.TrimPrefix(vtt, "\ufeff"), "\r\n", "\n")
	lines := strings.Split(vtt, "\n")

	var (
		parts    []string
		last     string
		inHeader = len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "WEBVTT")
		skipping bool
	)
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			inHeader, skipping = false, false
			continue
		}
		if inHeader || skipping {
			continue
		}
		if vttBlockOpen.MatchString(line) {
			skipping = true
			continue
		}
		if vttTimingRe.MatchString(line) || vttCueIDRe.MatchString(line) {
			continue
		}
		text := NormalizeSpace(DecodeEntities(vttInlineRe.ReplaceAllString(line, "")))
		if text == "" || text == last {
			continue
		}
		parts = append(parts, text)
		last = text
	}
	return NormalizeSpace(strings.Join(parts, " "))
}

// Preview caps s for log output.
func Preview(s string, limit int) string {
	return strutil.TruncateWith(s, limit, "…")
}
