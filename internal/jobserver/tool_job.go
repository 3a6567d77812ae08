package jobserver

import (
	"context"
	"errors"
	"time"

	"github.com/anatolykoptev/go_recipe/internal/engine"
	"github.com/anatolykoptev/go_recipe/internal/engine/jobs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxEventWait = 30 * time.Second

// JobStatusOutput is the output of recipe_job_status.
type JobStatusOutput struct {
	JobID       string     `json:"job_id"`
	State       jobs.State `json:"state"`
	ProgressPct int        `json:"progress_pct"`
}

// EventOutput is one job event with its timestamp in RFC 3339.
type EventOutput struct {
	Seq         int        `json:"seq"`
	State       jobs.State `json:"state"`
	ProgressPct int        `json:"progress_pct"`
	Message     string     `json:"message,omitempty"`
	At          string     `json:"at"`
}

// JobEventsOutput is the output of recipe_job_events.
type JobEventsOutput struct {
	JobID   string        `json:"job_id"`
	Events  []EventOutput `json:"events"`
	NextSeq int           `json:"next_seq"`
	Done    bool          `json:"done"`
}

// JobResultOutput is the output of recipe_job_result.
type JobResultOutput struct {
	JobID  string          `json:"job_id"`
	Ready  bool            `json:"ready"`
	Result *jobs.JobResult `json:"result,omitempty"`
}

func registerJobStart(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recipe_job_start",
		Description: "Start a recipe extraction job for an upload_id. Returns immediately with job_id; poll recipe_job_status or recipe_job_events, then fetch recipe_job_result. File uploads and unknown upload ids resolve at once to a not-implemented result.",
	}, svc.startJob)
}

func (svc *Service) startJob(ctx context.Context, _ *mcp.CallToolRequest, input engine.RecipeJobStartInput) (*mcp.CallToolResult, *jobs.Started, error) {
	started, err := svc.Orchestrator.StartJob(ctx, input.UploadID)
	if err != nil {
		return nil, nil, err
	}
	return nil, &started, nil
}

func registerJobStatus(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recipe_job_status",
		Description: "Get the state (queued, extracting, transcribing, understanding, synthesizing, validating, completed, failed) and progress percentage of a recipe job.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, svc.jobStatus)
}

func (svc *Service) jobStatus(ctx context.Context, _ *mcp.CallToolRequest, input engine.RecipeJobInput) (*mcp.CallToolResult, *JobStatusOutput, error) {
	if input.JobID == "" {
		return nil, nil, errors.New("job_id is required")
	}
	st, err := svc.Orchestrator.GetStatus(ctx, input.JobID)
	if err != nil {
		return nil, nil, err
	}
	return nil, &JobStatusOutput{JobID: input.JobID, State: st.State, ProgressPct: st.ProgressPct}, nil
}

func registerJobEvents(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recipe_job_events",
		Description: "Long-poll the event stream of a recipe job. Returns events after after_seq, waiting up to wait_seconds for a new one. Pass next_seq back as after_seq; stop when done is true.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, svc.jobEvents)
}

func (svc *Service) jobEvents(ctx context.Context, _ *mcp.CallToolRequest, input engine.RecipeJobEventsInput) (*mcp.CallToolResult, *JobEventsOutput, error) {
	if input.JobID == "" {
		return nil, nil, errors.New("job_id is required")
	}
	wait := min(time.Duration(max(input.WaitSecs, 0))*time.Second, maxEventWait)

	events, done, err := svc.Orchestrator.Events(ctx, input.JobID, input.AfterSeq, wait)
	if err != nil {
		return nil, nil, err
	}
	out := &JobEventsOutput{JobID: input.JobID, Events: make([]EventOutput, 0, len(events)), NextSeq: input.AfterSeq, Done: done}
	for _, ev := range events {
		out.Events = append(out.Events, EventOutput{
			Seq:         ev.Seq,
			State:       ev.State,
			ProgressPct: ev.ProgressPct,
			Message:     ev.Message,
			At:          ev.At.Format(time.RFC3339Nano),
		})
		out.NextSeq = ev.Seq
	}
	return nil, out, nil
}

func registerJobResult(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recipe_job_result",
		Description: "Fetch the result of a recipe job: structured recipe, Markdown and plain text. ready=false means not finished yet (or an unknown job id); poll again.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, svc.jobResult)
}

func (svc *Service) jobResult(ctx context.Context, _ *mcp.CallToolRequest, input engine.RecipeJobInput) (*mcp.CallToolResult, *JobResultOutput, error) {
	if input.JobID == "" {
		return nil, nil, errors.New("job_id is required")
	}
	res, ok, err := svc.Orchestrator.GetResult(ctx, input.JobID)
	if err != nil {
		return nil, nil, err
	}
	out := &JobResultOutput{JobID: input.JobID, Ready: ok}
	if ok {
		out.Result = &res
	}
	return nil, out, nil
}
