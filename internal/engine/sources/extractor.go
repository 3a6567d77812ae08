package sources

import "context"

// Extractor is the production source adapter used by the job orchestrator:
// metadata from the watch page, transcript from its caption tracks.
type Extractor struct{}

func (Extractor) Resolve(ctx context.Context, rawURL string) Metadata {
	return ResolveSource(ctx, rawURL)
}

func (Extractor) Transcript(ctx context.Context, rawURL string) string {
	return RetrieveTranscript(ctx, rawURL)
}
