package sources

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_recipe/internal/engine"
)

// YouTube watch-page primitives: player-state JSON types, markers and extraction.
// Higher-level logic lives in resolver.go and youtube_transcript.go.

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse"

// videoIDRE pulls the 11-char video ID from watch, short, embed and live URLs.
var videoIDRE = regexp.MustCompile(`(?:[?&]v=|youtu\.be/|/shorts/|/embed/|/live/)([a-zA-Z0-9_-]{11})(?:[^a-zA-Z0-9_-]|$)`)

// ExtractVideoID returns the source identifier embedded in rawURL, or "".
func ExtractVideoID(rawURL string) string {
	m := videoIDRE.FindStringSubmatch(rawURL)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

type playerResponse struct {
	VideoDetails *struct {
		Title            string `json:"title"`
		ShortDescription string `json:"shortDescription"`
	} `json:"videoDetails"`
	Microformat *struct {
		PlayerMicroformatRenderer struct {
			Title       simpleText `json:"title"`
			Description simpleText `json:"description"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []CaptionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type simpleText struct {
	SimpleText string `json:"simpleText"`
}

// CaptionTrack is one caption track advertised by the player state.
type CaptionTrack struct {
	LanguageCode string `json:"languageCode"`
	BaseURL      string `json:"baseUrl"`
	Kind         string `json:"kind,omitempty"` // "asr" = auto-generated
}

func (p playerResponse) tracks() []CaptionTrack {
	if p.Captions == nil {
		return nil
	}
	return p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

// findPlayerResponse locates the embedded player-state JSON and parses it.
func findPlayerResponse(page string) (playerResponse, bool) {
	body := []byte(page)
	for offset := 0; offset < len(body); {
		idx := bytes.Index(body[offset:], []byte(ytInitialPlayerResponseMarker))
		if idx < 0 {
			return playerResponse{}, false
		}
		rest := body[offset+idx+len(ytInitialPlayerResponseMarker):]
		offset += idx + len(ytInitialPlayerResponseMarker)

		// Accept `ytInitialPlayerResponse = {`, `["ytInitialPlayerResponse"] = {` and `"ytInitialPlayerResponse":{`.
		rest = bytes.TrimLeft(rest, ` "']`)
		if len(rest) == 0 || (rest[0] != '=' && rest[0] != ':') {
			continue
		}
		rest = bytes.TrimLeft(rest[1:], " \t\n")
		if data := extractJSON(rest); data != nil {
			if pr, ok := engine.ParseJSON[playerResponse](data); ok {
				return pr, true
			}
		}
	}
	return playerResponse{}, false
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack selects the first English track, else the first Spanish track,
// else the first track. Tracks that need a PoToken are only used when
// nothing else is available.
func pickTrack(tracks []CaptionTrack) (CaptionTrack, bool) {
	if len(tracks) == 0 {
		return CaptionTrack{}, false
	}
	usable := make([]CaptionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		usable = tracks
	}
	for _, prefix := range []string{"en", "es"} {
		for _, t := range usable {
			if isLanguage(t.LanguageCode, prefix) {
				return t, true
			}
		}
	}
	return usable[0], true
}

// isLanguage matches "en", "en-US", "en_GB" against prefix "en".
func isLanguage(code, prefix string) bool {
	code = strings.ToLower(code)
	return code == prefix || strings.HasPrefix(code, prefix+"-") || strings.HasPrefix(code, prefix+"_")
}
