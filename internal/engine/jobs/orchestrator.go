// Package jobs runs recipe extractions asynchronously and tracks them: job
// identity, a state machine with an event log per job, result publication
// and upload registration.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anatolykoptev/go_recipe/internal/engine"
	"github.com/anatolykoptev/go_recipe/internal/engine/recipe"
	"github.com/anatolykoptev/go_recipe/internal/engine/sources"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// NotImplementedMessage is the single step of results for file uploads and
// unknown upload ids.
const NotImplementedMessage = "File-based ingestion is not implemented yet. Submit a video URL instead."

var (
	ErrJobNotFound = errors.New("job not found")
	ErrClosed      = errors.New("orchestrator closed")
)

// Extractor supplies the raw text of a URL source.
type Extractor interface {
	Resolve(ctx context.Context, rawURL string) sources.Metadata
	Transcript(ctx context.Context, rawURL string) string
}

// Options bound the orchestrator's resource use. Zero values fall back to
// engine.Cfg.
type Options struct {
	MaxConcurrent int
	JobTimeout    time.Duration
}

// Started is returned by StartJob.
type Started struct {
	JobID     string `json:"job_id"`
	EventsRef string `json:"events_ref"`
}

// Status is a point-in-time view of a job.
type Status struct {
	State       State `json:"state"`
	ProgressPct int   `json:"progress_pct"`
}

type job struct {
	log    *eventLog
	cancel context.CancelFunc
	result atomic.Pointer[JobResult]
}

// Orchestrator owns job identity and runs pipelines on a bounded pool.
type Orchestrator struct {
	results ResultStore
	uploads UploadStore
	ext     Extractor
	opts    Options

	sem    *semaphore.Weighted
	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	jobs   map[string]*job
	closed bool
}

// New builds an orchestrator over the given stores and extractor.
func New(results ResultStore, uploads UploadStore, ext Extractor, opts Options) *Orchestrator {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = engine.Cfg.MaxConcurrentJobs
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = engine.Cfg.JobTimeout
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Orchestrator{
		results: results,
		uploads: uploads,
		ext:     ext,
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		ctx:     ctx,
		stop:    stop,
		jobs:    make(map[string]*job),
	}
}

// StartJob creates a job for uploadID and returns without waiting for it.
// URL uploads run the extraction pipeline in the background; file uploads and
// unknown ids resolve immediately to a not-implemented result.
func (o *Orchestrator) StartJob(ctx context.Context, uploadID string) (Started, error) {
	uploadID = strings.TrimSpace(uploadID)
	if uploadID == "" {
		return Started{}, fmt.Errorf("%w: upload_id is required", ErrInvalidInput)
	}

	rec, found, err := o.uploads.GetUpload(ctx, uploadID)
	if err != nil {
		return Started{}, fmt.Errorf("lookup upload: %w", err)
	}

	id := uuid.NewString()
	j := &job{log: newEventLog(id)}
	j.log.advance(StateQueued, "")

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return Started{}, ErrClosed
	}
	o.jobs[id] = j
	runnable := found && rec.SourceType == SourceURL && rec.SourceURL != ""
	var jctx context.Context
	if runnable {
		jctx, j.cancel = context.WithCancel(o.ctx)
		o.wg.Add(1)
	}
	o.mu.Unlock()

	engine.IncrJobsStarted()
	started := Started{JobID: id, EventsRef: "jobs/" + id + "/events"}

	if !runnable {
		slog.Info("job: source not runnable, storing fallback",
			slog.String("job", id), slog.String("upload", uploadID), slog.Bool("upload_found", found))
		o.fail(context.WithoutCancel(ctx), id, j, recipe.DefaultTitle, NotImplementedMessage)
		return started, nil
	}

	slog.Info("job: started", slog.String("job", id), slog.String("url", rec.SourceURL))
	go o.run(jctx, id, j, rec.SourceURL)
	return started, nil
}

func (o *Orchestrator) run(ctx context.Context, id string, j *job, sourceURL string) {
	defer o.wg.Done()
	defer j.cancel()

	start := time.Now()
	title := recipe.DefaultTitle
	defer func() {
		if r := recover(); r != nil {
			slog.Error("job: pipeline panic", slog.String("job", id), slog.Any("panic", r))
			o.fail(context.WithoutCancel(ctx), id, j, title, fmt.Sprintf("Recipe extraction failed: %v", r))
		}
	}()

	if err := o.sem.Acquire(ctx, 1); err != nil {
		o.fail(context.WithoutCancel(ctx), id, j, title, failureMessage(err))
		return
	}
	defer o.sem.Release(1)

	// JobTimeout bounds the pipeline, not the wait for a worker slot.
	pctx, cancel := context.WithTimeout(ctx, o.opts.JobTimeout)
	defer cancel()

	res, err := runPipeline(pctx, o.ext, j.log, sourceURL, &title)
	if err != nil {
		slog.Warn("job: pipeline failed", slog.String("job", id), slog.Any("error", err))
		o.fail(context.WithoutCancel(ctx), id, j, title, failureMessage(err))
		return
	}

	o.publish(context.WithoutCancel(ctx), id, j, res)
	j.log.advance(StateCompleted, "")
	engine.IncrJobsCompleted()
	slog.Info("job: completed", slog.String("job", id),
		slog.String("title", res.Recipe.Title),
		slog.Int("ingredients", len(res.Recipe.Ingredients)),
		slog.Int("steps", len(res.Recipe.Steps)),
		slog.Duration("elapsed", time.Since(start)))
}

// runPipeline runs every phase in order, advancing the event log as it goes.
// title is updated as soon as the source resolves so failures can keep it.
func runPipeline(ctx context.Context, ext Extractor, log *eventLog, sourceURL string, title *string) (JobResult, error) {
	log.advance(StateExtracting, "")
	meta := ext.Resolve(ctx, sourceURL)
	if strings.TrimSpace(meta.Title) != "" {
		*title = meta.Title
	}
	if err := ctx.Err(); err != nil {
		return JobResult{}, err
	}

	log.advance(StateTranscribing, "")
	transcript := ext.Transcript(ctx, sourceURL)
	if err := ctx.Err(); err != nil {
		return JobResult{}, err
	}

	log.advance(StateUnderstanding, "")
	ingredients := recipe.ExtractIngredients(meta.Description)

	log.advance(StateSynthesizing, "")
	steps := recipe.ExtractSteps(transcript, meta.Description)
	r := recipe.Assemble(meta.Title, ingredients, steps)

	log.advance(StateValidating, "")
	if err := r.Validate(); err != nil {
		return JobResult{}, err
	}
	return render(r), nil
}

// fail publishes a single-step fallback result and moves the job to failed.
func (o *Orchestrator) fail(ctx context.Context, id string, j *job, title, message string) {
	o.publish(ctx, id, j, render(recipe.Fallback(title, message)))
	j.log.advance(StateFailed, message)
	engine.IncrJobsFailed()
}

// publish writes res once. The job keeps its own copy so a failing store
// never leaves the id without a result in this process.
func (o *Orchestrator) publish(ctx context.Context, id string, j *job, res JobResult) {
	if !j.result.CompareAndSwap(nil, &res) {
		return
	}
	if err := o.results.PutResult(ctx, id, res); err != nil {
		slog.Error("job: store result failed", slog.String("job", id), slog.Any("error", err))
	}
}

// Extract runs the pipeline for one URL synchronously, outside any job.
func Extract(ctx context.Context, ext Extractor, sourceURL string) (JobResult, error) {
	if err := ValidateSourceURL(sourceURL); err != nil {
		return JobResult{}, err
	}
	l := newEventLog("")
	l.advance(StateQueued, "")
	title := recipe.DefaultTitle
	return runPipeline(ctx, ext, l, strings.TrimSpace(sourceURL), &title)
}

// FromText synthesizes and renders a recipe from text the caller already has.
func FromText(title, description, transcript string) JobResult {
	return render(recipe.Synthesize(title, description, transcript))
}

func render(r recipe.Recipe) JobResult {
	return JobResult{Recipe: r, Markdown: recipe.ToMarkdown(r), Text: recipe.ToPlainText(r)}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Recipe extraction timed out. Try again later."
	case errors.Is(err, context.Canceled):
		return "Recipe extraction was cancelled."
	default:
		return engine.Preview("Recipe extraction failed: "+err.Error(), 300)
	}
}

func (o *Orchestrator) lookup(id string) (*job, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	j, ok := o.jobs[id]
	return j, ok
}

// GetStatus reports a job's current state. Jobs this process never saw but
// whose result is in the store are reported completed.
func (o *Orchestrator) GetStatus(ctx context.Context, jobID string) (Status, error) {
	if j, ok := o.lookup(jobID); ok {
		s := j.log.current()
		return Status{State: s, ProgressPct: s.Progress()}, nil
	}
	_, found, err := o.results.GetResult(ctx, jobID)
	if err != nil {
		return Status{}, fmt.Errorf("lookup result: %w", err)
	}
	if !found {
		return Status{}, ErrJobNotFound
	}
	return Status{State: StateCompleted, ProgressPct: StateCompleted.Progress()}, nil
}

// Subscribe streams a job's events from the first one. The channel closes
// after the terminal event or when ctx is done; the job itself is unaffected.
func (o *Orchestrator) Subscribe(ctx context.Context, jobID string) (<-chan Event, error) {
	if j, ok := o.lookup(jobID); ok {
		return j.log.stream(ctx), nil
	}
	_, found, err := o.results.GetResult(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("lookup result: %w", err)
	}
	if !found {
		return nil, ErrJobNotFound
	}
	ch := make(chan Event, 1)
	ch <- Event{Seq: 1, JobID: jobID, State: StateCompleted, ProgressPct: StateCompleted.Progress(), At: time.Now().UTC()}
	close(ch)
	return ch, nil
}

// Events returns the events after sequence number after, waiting up to wait
// for a new one. done reports that the job has reached a terminal state.
func (o *Orchestrator) Events(ctx context.Context, jobID string, after int, wait time.Duration) (events []Event, done bool, err error) {
	j, ok := o.lookup(jobID)
	if !ok {
		ch, err := o.Subscribe(ctx, jobID)
		if err != nil {
			return nil, false, err
		}
		for ev := range ch {
			if ev.Seq > after {
				events = append(events, ev)
			}
		}
		return events, true, nil
	}
	events, done = j.log.wait(ctx, after, wait)
	return events, done, nil
}

// GetResult returns the published result. ok is false both for unknown ids
// and for jobs that have not finished.
func (o *Orchestrator) GetResult(ctx context.Context, jobID string) (JobResult, bool, error) {
	if j, ok := o.lookup(jobID); ok {
		if res := j.result.Load(); res != nil {
			return *res, true, nil
		}
		return JobResult{}, false, nil
	}
	return o.results.GetResult(ctx, jobID)
}

// Close cancels running pipelines and waits for them to publish their
// fallback results. StartJob fails with ErrClosed afterwards.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.stop()
	o.wg.Wait()
}
