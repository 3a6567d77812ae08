package jobserver

import (
	"context"
	"testing"
	"time"

	"github.com/anatolykoptev/go_recipe/internal/engine"
	"github.com/anatolykoptev/go_recipe/internal/engine/jobs"
	"github.com/anatolykoptev/go_recipe/internal/engine/recipe"
	"github.com/anatolykoptev/go_recipe/internal/engine/sources"
	"github.com/anatolykoptev/go_recipe/internal/toolutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyExtractor struct{}

func (emptyExtractor) Resolve(context.Context, string) sources.Metadata {
	return sources.Metadata{Title: recipe.DefaultTitle}
}

func (emptyExtractor) Transcript(context.Context, string) string { return "" }

type stubExtractor struct{}

func (stubExtractor) Resolve(context.Context, string) sources.Metadata {
	return sources.Metadata{Title: "Fried Rice", Description: "Ingredients\n2 cups rice\n1 egg"}
}

func (stubExtractor) Transcript(context.Context, string) string {
	return "Heat the wok. Fry the rice for 3 minutes. Serve hot."
}

func newService(t *testing.T) *Service {
	t.Helper()
	store := jobs.NewMemoryStore()
	o := jobs.New(store, store, stubExtractor{}, jobs.Options{})
	t.Cleanup(o.Close)
	return &Service{Orchestrator: o, Uploads: jobs.NewUploads(store, nil), Extractor: stubExtractor{}}
}

func TestJobFlow(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, up, err := svc.upload(ctx, nil, engine.RecipeUploadInput{SourceURL: "youtu.be/abcdefghijk"})
	require.NoError(t, err)
	require.NotEmpty(t, up.UploadID)
	_, err = time.Parse(time.RFC3339, up.StorageHandoff.ExpiresAt)
	require.NoError(t, err)

	_, started, err := svc.startJob(ctx, nil, engine.RecipeJobStartInput{UploadID: up.UploadID})
	require.NoError(t, err)

	var states []jobs.State
	after := 0
	for {
		_, ev, err := svc.jobEvents(ctx, nil, engine.RecipeJobEventsInput{JobID: started.JobID, AfterSeq: after, WaitSecs: 2})
		require.NoError(t, err)
		for _, e := range ev.Events {
			states = append(states, e.State)
		}
		after = ev.NextSeq
		if ev.Done {
			break
		}
	}
	assert.Equal(t, jobs.Phases, states)

	_, st, err := svc.jobStatus(ctx, nil, engine.RecipeJobInput{JobID: started.JobID})
	require.NoError(t, err)
	assert.Equal(t, jobs.StateCompleted, st.State)
	assert.Equal(t, 100, st.ProgressPct)

	_, res, err := svc.jobResult(ctx, nil, engine.RecipeJobInput{JobID: started.JobID})
	require.NoError(t, err)
	require.True(t, res.Ready)
	assert.Equal(t, "Fried Rice", res.Result.Recipe.Title)
	assert.Len(t, res.Result.Recipe.Steps, 3)
	assert.Equal(t, "3 minutes", res.Result.Recipe.Steps[1].TimeHint)
}

func TestJobToolErrors(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, _, err := svc.upload(ctx, nil, engine.RecipeUploadInput{SourceType: "file", Filename: "x.mp4"})
	assert.ErrorIs(t, err, jobs.ErrInvalidInput)

	_, _, err = svc.startJob(ctx, nil, engine.RecipeJobStartInput{})
	assert.ErrorIs(t, err, jobs.ErrInvalidInput)

	_, _, err = svc.jobStatus(ctx, nil, engine.RecipeJobInput{JobID: "missing"})
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)

	_, res, err := svc.jobResult(ctx, nil, engine.RecipeJobInput{JobID: "missing"})
	require.NoError(t, err)
	assert.False(t, res.Ready)
	assert.Nil(t, res.Result)
}

func TestExtractTool(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, out, err := svc.extract(ctx, nil, engine.RecipeExtractInput{URL: "https://youtu.be/abcdefghijk"})
	require.NoError(t, err)
	require.NotNil(t, out.Recipe)
	assert.Equal(t, "Fried Rice", out.Recipe.Title)
	assert.Empty(t, out.Markdown)

	_, out, err = svc.extract(ctx, nil, engine.RecipeExtractInput{
		Title:       "Toast",
		Description: "2 slices bread",
		Transcript:  "Spread the butter. Serve.",
		Format:      "md",
	})
	require.NoError(t, err)
	assert.Nil(t, out.Recipe)
	assert.Contains(t, out.Markdown, "# Toast")
	assert.Contains(t, out.Markdown, "1. Spread the butter.")

	_, _, err = svc.extract(ctx, nil, engine.RecipeExtractInput{})
	assert.Error(t, err)
}

func TestExtractToolSkipsCachingPlaceholder(t *testing.T) {
	ctx := context.Background()
	engine.InitCache("", time.Minute, 100, time.Minute)

	svc := newService(t)
	svc.Extractor = emptyExtractor{}
	failedURL := "https://youtu.be/placeholder1"
	_, out, err := svc.extract(ctx, nil, engine.RecipeExtractInput{URL: failedURL})
	require.NoError(t, err)
	require.NotNil(t, out.Recipe)
	assert.Equal(t, recipe.DefaultTitle, out.Recipe.Title)
	assert.Equal(t, recipe.PlaceholderStep, out.Recipe.Steps[0].Text)
	_, cached := toolutil.CacheLoadJSON[jobs.JobResult](ctx, engine.CacheKey("recipe_extract", failedURL))
	assert.False(t, cached)

	svc.Extractor = stubExtractor{}
	_, out, err = svc.extract(ctx, nil, engine.RecipeExtractInput{URL: failedURL})
	require.NoError(t, err)
	assert.Equal(t, "Fried Rice", out.Recipe.Title)
	res, cached := toolutil.CacheLoadJSON[jobs.JobResult](ctx, engine.CacheKey("recipe_extract", failedURL))
	require.True(t, cached)
	assert.Equal(t, "Fried Rice", res.Recipe.Title)
}
