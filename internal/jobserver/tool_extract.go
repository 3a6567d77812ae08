package jobserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_recipe/internal/engine"
	"github.com/anatolykoptev/go_recipe/internal/engine/jobs"
	"github.com/anatolykoptev/go_recipe/internal/engine/recipe"
	"github.com/anatolykoptev/go_recipe/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ExtractOutput is the output of recipe_extract. Only the requested
// rendering is filled in.
type ExtractOutput struct {
	Recipe   *recipe.Recipe `json:"recipe,omitempty"`
	Markdown string         `json:"markdown,omitempty"`
	Text     string         `json:"text,omitempty"`
}

func registerExtract(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recipe_extract",
		Description: "Extract a recipe in one call, without a job. Give a video url, or title/description/transcript text. Ingredients come from the description, steps from the transcript (else the description). Output format: json (default), markdown, text.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, svc.extract)
}

func (svc *Service) extract(ctx context.Context, _ *mcp.CallToolRequest, input engine.RecipeExtractInput) (*mcp.CallToolResult, *ExtractOutput, error) {
	sourceURL := toolutil.NormURL(input.URL)
	hasText := strings.TrimSpace(input.Description+input.Transcript) != ""
	if sourceURL == "" && !hasText {
		return nil, nil, errors.New("url or description/transcript is required")
	}

	var res jobs.JobResult
	if sourceURL != "" {
		cacheKey := engine.CacheKey("recipe_extract", sourceURL)
		cached, ok := toolutil.CacheLoadJSON[jobs.JobResult](ctx, cacheKey)
		if ok {
			res = cached
		} else {
			var err error
			res, err = jobs.Extract(ctx, svc.Extractor, sourceURL)
			if err != nil {
				return nil, nil, err
			}
			if !isPlaceholder(res.Recipe) {
				toolutil.CacheStoreJSON(ctx, cacheKey, res)
			}
		}
		slog.Info("recipe_extract: url", slog.String("url", sourceURL), slog.Bool("cached", ok))
	} else {
		res = jobs.FromText(input.Title, input.Description, input.Transcript)
	}

	return nil, formatOutput(res, toolutil.NormFormat(input.Format)), nil
}

// isPlaceholder reports a recipe built only from defaults, as when both the
// page and the captions failed to load. Such results are not cached.
func isPlaceholder(r recipe.Recipe) bool {
	return r.Title == recipe.DefaultTitle && len(r.Ingredients) == 0 &&
		len(r.Steps) == 1 && r.Steps[0].Text == recipe.PlaceholderStep
}

func formatOutput(res jobs.JobResult, format string) *ExtractOutput {
	switch format {
	case "markdown":
		return &ExtractOutput{Markdown: res.Markdown}
	case "text":
		return &ExtractOutput{Text: res.Text}
	default:
		return &ExtractOutput{Recipe: &res.Recipe}
	}
}
