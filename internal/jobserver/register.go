package jobserver

import (
	"github.com/anatolykoptev/go_recipe/internal/engine/jobs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Service holds what the recipe tools call into.
type Service struct {
	Orchestrator *jobs.Orchestrator
	Uploads      *jobs.Uploads
	Extractor    jobs.Extractor
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 6

// RegisterTools registers the recipe tools on the given MCP server:
// recipe_upload, recipe_job_start, recipe_job_status, recipe_job_events,
// recipe_job_result and recipe_extract.
func RegisterTools(server *mcp.Server, svc *Service) {
	registerUpload(server, svc)
	registerJobStart(server, svc)
	registerJobStatus(server, svc)
	registerJobEvents(server, svc)
	registerJobResult(server, svc)
	registerExtract(server, svc)
}
