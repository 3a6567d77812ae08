package jobserver

import (
	"context"
	"time"

	"github.com/anatolykoptev/go_recipe/internal/engine"
	"github.com/anatolykoptev/go_recipe/internal/engine/jobs"
	"github.com/anatolykoptev/go_recipe/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// UploadOutput is the output of recipe_upload.
type UploadOutput struct {
	UploadID       string        `json:"upload_id"`
	StorageHandoff HandoffOutput `json:"storage_handoff"`
}

// HandoffOutput is where file content would be PUT.
type HandoffOutput struct {
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt string            `json:"expires_at"`
}

func registerUpload(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recipe_upload",
		Description: "Register a recipe source. For a video URL set source_url (source_type defaults to url); for a file set filename and size_bytes. Returns upload_id for recipe_job_start and a storage hand-off (pre-signed PUT target) for file content.",
	}, svc.upload)
}

func (svc *Service) upload(ctx context.Context, _ *mcp.CallToolRequest, input engine.RecipeUploadInput) (*mcp.CallToolResult, *UploadOutput, error) {
	d := jobs.Descriptor{
		SourceType: jobs.SourceType(toolutil.NormSourceType(input.SourceType, input.SourceURL)),
		SourceURL:  toolutil.NormURL(input.SourceURL),
		Filename:   input.Filename,
		SizeBytes:  input.SizeBytes,
	}
	up, err := svc.Uploads.CreateUpload(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	h := up.StorageHandoff
	return nil, &UploadOutput{
		UploadID: up.UploadID,
		StorageHandoff: HandoffOutput{
			Method:    h.Method,
			URL:       h.URL,
			Headers:   h.Headers,
			ExpiresAt: h.ExpiresAt.Format(time.RFC3339),
		},
	}, nil
}
