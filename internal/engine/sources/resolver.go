package sources

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_recipe/internal/engine"
	"github.com/anatolykoptev/go_recipe/internal/engine/recipe"
	"golang.org/x/net/html"
)

// Metadata is the best-effort title and description of a video page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// pageView is a parsed watch page shared by every fallback attempt.
type pageView struct {
	raw       string
	player    playerResponse
	hasPlayer bool
	meta      map[string]string // og:title, og:description, description
	title     string            // <title> text
}

// attempt is one step of a fallback chain. It reports ok=false on a miss.
type attempt struct {
	name string
	run  func(p *pageView) (string, bool)
}

// Ordered fallback chains. The first attempt that reports ok wins.
var (
	titleChain = []attempt{
		{"player.videoDetails", func(p *pageView) (string, bool) {
			return nonEmpty(p.hasPlayer && p.player.VideoDetails != nil, func() string { return p.player.VideoDetails.Title })
		}},
		{"player.microformat", func(p *pageView) (string, bool) {
			return nonEmpty(p.hasPlayer && p.player.Microformat != nil, func() string {
				return p.player.Microformat.PlayerMicroformatRenderer.Title.SimpleText
			})
		}},
		{"og:title", func(p *pageView) (string, bool) { return nonEmpty(true, func() string { return p.meta["og:title"] }) }},
		{"<title>", func(p *pageView) (string, bool) {
			return nonEmpty(true, func() string { return strings.TrimSuffix(p.title, " - YouTube") })
		}},
	}

	descriptionChain = []attempt{
		{"player.videoDetails", func(p *pageView) (string, bool) {
			return nonEmpty(p.hasPlayer && p.player.VideoDetails != nil, func() string { return p.player.VideoDetails.ShortDescription })
		}},
		{"player.microformat", func(p *pageView) (string, bool) {
			return nonEmpty(p.hasPlayer && p.player.Microformat != nil, func() string {
				return p.player.Microformat.PlayerMicroformatRenderer.Description.SimpleText
			})
		}},
		{"raw shortDescription", rawDescription},
		{"og:description", func(p *pageView) (string, bool) {
			d := p.meta["og:description"]
			if d == "" {
				d = p.meta["description"]
			}
			return nonEmpty(true, func() string { return engine.HTMLToText(d) })
		}},
	}

	rawDescriptionRes = []*regexp.Regexp{
		regexp.MustCompile(`"shortDescription":"((?:[^"\\]|\\.)*)"`),
		regexp.MustCompile(`"description":\{"simpleText":"((?:[^"\\]|\\.)*)"`),
	}
)

// ResolveSource fetches a video page and extracts its title and description.
// It never fails: a missing title falls back to recipe.DefaultTitle and a
// missing description to "".
func ResolveSource(ctx context.Context, rawURL string) Metadata {
	engine.IncrSourceResolve()

	cacheKey := engine.CacheKey("meta", rawURL)
	if cached, ok := engine.CacheGet(ctx, cacheKey); ok {
		if meta, ok := engine.ParseJSON[Metadata]([]byte(cached)); ok {
			return meta
		}
	}

	var page string
	err := engine.TrackOperation(ctx, "resolve_source", func(ctx context.Context) error {
		var err error
		page, err = engine.FetchText(ctx, rawURL, engine.FetchOpts{})
		return err
	})
	if err != nil {
		slog.Warn("resolve: page fetch failed, using defaults", slog.String("url", rawURL), slog.Any("error", err))
		return Metadata{Title: recipe.DefaultTitle}
	}

	meta := ResolvePage(page)
	if meta.Title != recipe.DefaultTitle {
		if data, err := json.Marshal(meta); err == nil {
			engine.CacheSet(ctx, cacheKey, string(data))
		}
	}
	return meta
}

// ResolvePage runs the title and description fallback chains over page HTML.
func ResolvePage(page string) Metadata {
	view := newPageView(page)

	title, from := runChain(titleChain, view)
	title = engine.NormalizeSpace(engine.DecodeEntities(title))
	if title == "" {
		title = recipe.DefaultTitle
		from = "default"
	}

	desc, descFrom := runChain(descriptionChain, view)
	slog.Debug("resolve: page resolved",
		slog.String("title_from", from),
		slog.String("description_from", descFrom),
		slog.Int("description_len", len(desc)))

	return Metadata{Title: title, Description: strings.TrimSpace(desc)}
}

func runChain(chain []attempt, view *pageView) (value, from string) {
	for _, a := range chain {
		if v, ok := a.run(view); ok {
			return v, a.name
		}
	}
	return "", ""
}

func newPageView(page string) *pageView {
	view := &pageView{raw: page, meta: map[string]string{}}
	view.player, view.hasPlayer = findPlayerResponse(page)
	view.title = scanHead(page, view.meta)
	return view
}

// scanHead tokenizes the document, collecting the first value of each
// interesting meta tag into meta, and returns the <title> text.
func scanHead(page string, meta map[string]string) string {
	z := html.NewTokenizer(strings.NewReader(page))
	var title string
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				slog.Debug("resolve: tokenizer stopped", slog.Any("error", z.Err()))
			}
			return title
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "meta":
				collectMeta(tok, meta)
			case "title":
				inTitle = title == ""
			case "body":
				// Meta tags and <title> live in <head>; YouTube repeats some in the body.
				return title
			}
		case html.TextToken:
			if inTitle {
				title = strings.TrimSpace(string(z.Text()))
				inTitle = false
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}

func collectMeta(tok html.Token, meta map[string]string) {
	var key, content string
	for _, a := range tok.Attr {
		switch strings.ToLower(a.Key) {
		case "property", "name":
			key = strings.ToLower(a.Val)
		case "content":
			content = a.Val
		}
	}
	switch key {
	case "og:title", "og:description", "description":
		if _, seen := meta[key]; !seen && strings.TrimSpace(content) != "" {
			meta[key] = strings.TrimSpace(content)
		}
	}
}

// rawDescription finds an escaped description field anywhere in the page
// and JSON-unescapes it.
func rawDescription(p *pageView) (string, bool) {
	for _, re := range rawDescriptionRes {
		m := re.FindStringSubmatch(p.raw)
		if m == nil {
			continue
		}
		if s, ok := engine.UnescapeJSONString(m[1]); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func nonEmpty(guard bool, get func() string) (string, bool) {
	if !guard {
		return "", false
	}
	s := get()
	return s, strings.TrimSpace(s) != ""
}
