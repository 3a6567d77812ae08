package sources

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/shorts/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://example.com/recipes/lasagna", ""},
		{"https://www.youtube.com/watch?v=short", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractVideoID(tt.url); got != tt.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFindPlayerResponse(t *testing.T) {
	const player = `{"videoDetails":{"title":"Tacos {al pastor}","shortDescription":"say \"hi\" \\ {"}}`
	tests := []struct {
		name string
		page string
		ok   bool
	}{
		{"var assignment", `<script>var ytInitialPlayerResponse = ` + player + `;</script>`, true},
		{"window index", `<script>window["ytInitialPlayerResponse"] = ` + player + `;</script>`, true},
		{"json key", `{"ytInitialPlayerResponse":` + player + `}`, true},
		{"mention before assignment", `if (ytInitialPlayerResponse) {} var ytInitialPlayerResponse = ` + player, true},
		{"missing", `<html><body>nothing here</body></html>`, false},
		{"truncated", `var ytInitialPlayerResponse = {"videoDetails":{"title":"x"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr, ok := findPlayerResponse(tt.page)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if pr.VideoDetails == nil || pr.VideoDetails.Title != "Tacos {al pastor}" {
				t.Errorf("unexpected videoDetails: %+v", pr.VideoDetails)
			}
			if pr.VideoDetails.ShortDescription != `say "hi" \ {` {
				t.Errorf("description = %q", pr.VideoDetails.ShortDescription)
			}
		})
	}
}

func TestPickTrack(t *testing.T) {
	tests := []struct {
		name   string
		tracks []CaptionTrack
		want   string
		ok     bool
	}{
		{"none", nil, "", false},
		{"english first", []CaptionTrack{
			{LanguageCode: "fr", BaseURL: "u1"},
			{LanguageCode: "es", BaseURL: "u2"},
			{LanguageCode: "en-GB", BaseURL: "u3"},
		}, "en-GB", true},
		{"spanish second", []CaptionTrack{
			{LanguageCode: "de", BaseURL: "u1"},
			{LanguageCode: "es-419", BaseURL: "u2"},
		}, "es-419", true},
		{"any track", []CaptionTrack{
			{LanguageCode: "ja", BaseURL: "u1"},
			{LanguageCode: "ko", BaseURL: "u2"},
		}, "ja", true},
		{"skips po token", []CaptionTrack{
			{LanguageCode: "en", BaseURL: "u1&exp=xpe"},
			{LanguageCode: "fr", BaseURL: "u2"},
		}, "fr", true},
		{"po token only", []CaptionTrack{
			{LanguageCode: "en", BaseURL: "u1&exp=xpe"},
		}, "en", true},
		{"not a prefix match", []CaptionTrack{
			{LanguageCode: "eno", BaseURL: "u1"},
			{LanguageCode: "en", BaseURL: "u2"},
		}, "en", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickTrack(tt.tracks)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got.LanguageCode != tt.want {
				t.Errorf("picked %q, want %q", got.LanguageCode, tt.want)
			}
		})
	}
}
