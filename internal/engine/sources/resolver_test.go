package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anatolykoptev/go_recipe/internal/engine"
	"github.com/anatolykoptev/go_recipe/internal/engine/recipe"
)

func TestResolvePage(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		wantT    string
		wantDesc string
	}{
		{
			name: "player state",
			page: `<html><head><title>Ignored - YouTube</title></head><body><script>
var ytInitialPlayerResponse = {"videoDetails":{"title":"One-Pot  Pasta","shortDescription":"Ingredients\n2 cups flour"}};
</script></body></html>`,
			wantT:    "One-Pot Pasta",
			wantDesc: "Ingredients\n2 cups flour",
		},
		{
			name: "microformat",
			page: `<script>var ytInitialPlayerResponse = {"microformat":{"playerMicroformatRenderer":{
"title":{"simpleText":"Green Curry"},"description":{"simpleText":"1 can coconut milk"}}}};</script>`,
			wantT:    "Green Curry",
			wantDesc: "1 can coconut milk",
		},
		{
			name: "open graph",
			page: `<html><head>
<meta property="og:title" content="Mac &amp; Cheese">
<meta property="og:description" content="Creamy and quick">
<title>Other - YouTube</title></head><body></body></html>`,
			wantT:    "Mac & Cheese",
			wantDesc: "Creamy and quick",
		},
		{
			name:     "title tag and name=description",
			page:     `<html><head><title>Banana Bread - YouTube</title><meta name="description" content="Moist loaf"></head></html>`,
			wantT:    "Banana Bread",
			wantDesc: "Moist loaf",
		},
		{
			name: "raw short description",
			page: `<html><head><title>Soup - YouTube</title></head><body>
<script>var x = {"shortDescription":"Ingredients\n1 onion\n½ cup rice"};</script></body></html>`,
			wantT:    "Soup",
			wantDesc: "Ingredients\n1 onion\n½ cup rice",
		},
		{
			name:     "nothing",
			page:     `<html><body><p>hello</p></body></html>`,
			wantT:    recipe.DefaultTitle,
			wantDesc: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePage(tt.page)
			if got.Title != tt.wantT {
				t.Errorf("title = %q, want %q", got.Title, tt.wantT)
			}
			if got.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", got.Description, tt.wantDesc)
			}
		})
	}
}

func TestResolveSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/watch" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><head><meta property="og:title" content="Shakshuka"></head></html>`))
	}))
	defer srv.Close()
	engine.Init(engine.Config{HTTPClient: srv.Client()})
	defer engine.Init(engine.Config{})

	ctx := context.Background()
	if got := ResolveSource(ctx, srv.URL+"/watch?v=abcdefghijk"); got.Title != "Shakshuka" {
		t.Errorf("title = %q, want Shakshuka", got.Title)
	}

	got := ResolveSource(ctx, srv.URL+"/gone")
	if got.Title != recipe.DefaultTitle || got.Description != "" {
		t.Errorf("fetch failure should yield defaults, got %+v", got)
	}
}
