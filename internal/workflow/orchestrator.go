package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"autoreel/internal/distribution"
	"autoreel/internal/history"
	"autoreel/internal/knowledge"
	"autoreel/internal/reel"
	"autoreel/internal/script"
	"autoreel/internal/videogen"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultVideoTimeout = 2 * time.Minute
)

// Orchestrator sequences the script, video, and upload stages. It holds
// no per-run state of its own; everything mutable lives on the Run.
type Orchestrator struct {
	scripts      script.Generator
	videos       videogen.Generator
	router       *distribution.Router
	store        history.Store
	graph        knowledge.Graph
	pollInterval time.Duration
	videoTimeout time.Duration
	logger       *slog.Logger
}

type Options struct {
	Scripts script.Generator
	Videos  videogen.Generator
	Router  *distribution.Router
	// Store and Graph receive each completed run; both are best-effort.
	Store        history.Store
	Graph        knowledge.Graph
	PollInterval time.Duration
	VideoTimeout time.Duration
	Logger       *slog.Logger
}

func New(opts Options) *Orchestrator {
	if opts.Store == nil {
		opts.Store = history.Discard{}
	}
	if opts.Graph == nil {
		opts.Graph = knowledge.NewLogGraph(opts.Logger)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.VideoTimeout <= 0 {
		opts.VideoTimeout = defaultVideoTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		scripts:      opts.Scripts,
		videos:       opts.Videos,
		router:       opts.Router,
		store:        opts.Store,
		graph:        opts.Graph,
		pollInterval: opts.PollInterval,
		videoTimeout: opts.VideoTimeout,
		logger:       opts.Logger,
	}
}

// NewRun validates the request and starts a run in collecting_input.
// The request is immutable for the life of the run.
func (o *Orchestrator) NewRun(req reel.ScriptRequest) (*Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &Run{state: StateCollectingInput, request: req}, nil
}

// Submit generates the script and moves the run to awaiting_video_confirm.
// A generation failure moves the run to failed; resubmitting retries it.
func (o *Orchestrator) Submit(ctx context.Context, run *Run) (*reel.GeneratedScript, error) {
	run.mu.Lock()
	if run.abandoned {
		run.mu.Unlock()
		return nil, ErrAbandoned
	}
	if run.busy || (run.state != StateCollectingInput && run.state != StateFailed) {
		existing := run.script
		state := run.state
		run.mu.Unlock()
		o.logger.Info("ignoring stale submit", "state", state)
		return existing, nil
	}
	run.busy = true
	req := run.request
	run.mu.Unlock()

	generated, err := o.scripts.Generate(ctx, req)

	run.mu.Lock()
	defer run.mu.Unlock()
	run.busy = false
	if run.abandoned {
		return nil, ErrAbandoned
	}
	if err != nil {
		run.setState(StateFailed, "script generation failed")
		return nil, err
	}
	run.script = generated
	run.setState(StateScriptReady, "script generated")
	run.setState(StateAwaitingVideoConfirm, "waiting for script decision")
	return generated, nil
}

// Reject regenerates the script from the unchanged request, replacing the
// previous GeneratedScript wholesale. The run stays at the script decision
// point; callers bound how many times they loop. If regeneration fails the
// previous script is kept and the run does not move to an error state.
func (o *Orchestrator) Reject(ctx context.Context, run *Run) (*reel.GeneratedScript, error) {
	run.mu.Lock()
	if run.abandoned {
		run.mu.Unlock()
		return nil, ErrAbandoned
	}
	if run.busy || run.state != StateAwaitingVideoConfirm {
		existing := run.script
		state := run.state
		run.mu.Unlock()
		o.logger.Info("ignoring stale reject", "state", state)
		return existing, nil
	}
	run.busy = true
	req := run.request
	run.mu.Unlock()

	generated, err := o.scripts.Generate(ctx, req)

	run.mu.Lock()
	defer run.mu.Unlock()
	run.busy = false
	if run.abandoned {
		return nil, ErrAbandoned
	}
	if err != nil {
		return run.script, err
	}
	run.script = generated
	run.setState(StateScriptReady, "script regenerated")
	run.setState(StateAwaitingVideoConfirm, "waiting for script decision")
	return generated, nil
}

// ConfirmVideo accepts the script and renders the video. A confirmation
// that arrives while generation is already running, or after the run has
// advanced, is a no-op and triggers no second provider call.
func (o *Orchestrator) ConfirmVideo(ctx context.Context, run *Run) (*videogen.Job, error) {
	run.mu.Lock()
	if run.abandoned {
		run.mu.Unlock()
		return nil, ErrAbandoned
	}
	if run.state != StateAwaitingVideoConfirm {
		existing := run.job
		state := run.state
		run.mu.Unlock()
		o.logger.Info("ignoring stale video confirmation", "state", state)
		return existing, nil
	}
	run.setState(StateVideoGenerating, "script confirmed")
	return o.renderVideo(ctx, run)
}

// RetryVideo retries video generation after a render failure, reusing the
// already-generated script without calling the script provider again.
func (o *Orchestrator) RetryVideo(ctx context.Context, run *Run) (*videogen.Job, error) {
	run.mu.Lock()
	if run.abandoned {
		run.mu.Unlock()
		return nil, ErrAbandoned
	}
	if run.state != StateFailed || run.script == nil {
		existing := run.job
		state := run.state
		run.mu.Unlock()
		o.logger.Info("ignoring stale video retry", "state", state)
		return existing, nil
	}
	run.setState(StateVideoGenerating, "retrying video generation")
	return o.renderVideo(ctx, run)
}

// renderVideo runs the provider call and polling loop. The caller must
// hold run.mu and have already moved the run to video_generating; the
// lock is released for the duration of the call.
func (o *Orchestrator) renderVideo(ctx context.Context, run *Run) (*videogen.Job, error) {
	finalScript := run.script.FinalScript
	meta := videogen.Metadata{
		ProductName:     run.request.ProductName,
		Platforms:       run.request.Platforms,
		AspectRatios:    run.request.AspectRatios,
		DurationSeconds: run.request.DurationSeconds,
	}
	run.mu.Unlock()

	job := o.generateAndPoll(ctx, finalScript, meta)

	run.mu.Lock()
	defer run.mu.Unlock()
	if run.abandoned {
		return nil, ErrAbandoned
	}
	run.job = job
	if job.Status != videogen.StatusSucceeded {
		run.setState(StateFailed, "video generation failed")
		return job, videogen.Failed(job)
	}
	run.setState(StateVideoReady, "video rendered")
	run.setState(StateAwaitingUploadConfirm, "waiting for upload decision")
	return job, nil
}

// generateAndPoll normalizes the provider interaction to a terminal Job:
// synchronous responses come back directly, asynchronous ones are polled
// until they settle or the video timeout lapses.
func (o *Orchestrator) generateAndPoll(ctx context.Context, finalScript string, meta videogen.Metadata) *videogen.Job {
	ctx, cancel := context.WithTimeout(ctx, o.videoTimeout)
	defer cancel()

	job, err := o.videos.Generate(ctx, finalScript, meta)
	if err != nil {
		return &videogen.Job{Status: videogen.StatusFailed, Message: err.Error()}
	}

	for !job.Terminal() {
		jobID := job.JobID
		if jobID == "" {
			return &videogen.Job{Status: videogen.StatusFailed, Message: "provider returned pending job without job id"}
		}
		select {
		case <-ctx.Done():
			msg := "video generation timed out"
			if errors.Is(ctx.Err(), context.Canceled) {
				msg = "video generation canceled"
			}
			return &videogen.Job{Status: videogen.StatusFailed, JobID: jobID, Message: msg}
		case <-time.After(o.pollInterval):
		}
		job, err = o.videos.Status(ctx, jobID)
		if err != nil {
			return &videogen.Job{Status: videogen.StatusFailed, JobID: jobID, Message: err.Error()}
		}
	}
	return job
}

// ConfirmUpload publishes the rendered video to the given platforms and
// completes the run. A partial or fully failed aggregate still ends in
// done; per-platform failures never abort the dispatch.
func (o *Orchestrator) ConfirmUpload(ctx context.Context, run *Run, caption string, hashtags []string, platforms []string) (*distribution.Outcome, error) {
	run.mu.Lock()
	if run.abandoned {
		run.mu.Unlock()
		return nil, ErrAbandoned
	}
	if run.state != StateAwaitingUploadConfirm {
		existing := run.outcome
		state := run.state
		run.mu.Unlock()
		o.logger.Info("ignoring stale upload confirmation", "state", state)
		return existing, nil
	}
	if len(platforms) == 0 {
		platforms = run.request.Platforms
	}
	uploadReq := distribution.UploadRequest{
		VideoURL:  run.job.VideoURL,
		Caption:   caption,
		Hashtags:  hashtags,
		Platforms: platforms,
	}
	run.setState(StateUploading, "upload confirmed")
	run.mu.Unlock()

	outcome := o.router.Dispatch(ctx, uploadReq)

	run.mu.Lock()
	if run.abandoned {
		run.mu.Unlock()
		return nil, ErrAbandoned
	}
	run.outcome = outcome
	run.setState(StateDone, fmt.Sprintf("uploads finished: %s", outcome.Status()))
	run.mu.Unlock()

	o.recordRun(ctx, run)
	return outcome, nil
}

// DeclineUpload completes the run without publishing.
func (o *Orchestrator) DeclineUpload(ctx context.Context, run *Run) error {
	run.mu.Lock()
	if run.abandoned {
		run.mu.Unlock()
		return ErrAbandoned
	}
	if run.state != StateAwaitingUploadConfirm {
		state := run.state
		run.mu.Unlock()
		o.logger.Info("ignoring stale upload decline", "state", state)
		return nil
	}
	run.setState(StateDone, "upload declined")
	run.mu.Unlock()

	o.recordRun(ctx, run)
	return nil
}

// Abandon marks the run abandoned. In-flight provider responses are
// discarded when they arrive. Abandoning a terminal run is a no-op.
func (o *Orchestrator) Abandon(run *Run) {
	run.mu.Lock()
	defer run.mu.Unlock()
	if run.abandoned || run.state.Terminal() {
		return
	}
	run.abandoned = true
	run.setState(StateFailed, "abandoned")
}

// recordRun pushes the finished run to the history store and knowledge
// graph. Both are best-effort; failures are logged, never surfaced.
func (o *Orchestrator) recordRun(ctx context.Context, run *Run) {
	run.mu.Lock()
	rec := history.Record{
		CreatedAt: time.Now(),
		Request:   run.request,
		Script:    run.script,
		Job:       run.job,
	}
	if run.outcome != nil {
		rec.Uploads = run.outcome.Results
		rec.Outcome = string(run.outcome.Status())
	}
	run.mu.Unlock()

	if err := o.store.Record(ctx, rec); err != nil {
		o.logger.Warn("failed to record run history", "error", err)
	}
	if err := o.graph.RecordTopic(ctx, rec.Request.ProductName, rec.Request.ProductDescription); err != nil {
		o.logger.Warn("failed to record topic", "error", err)
	}
	if rec.Script != nil {
		if err := o.graph.RecordScript(ctx, rec.Request.ProductName, rec.Script); err != nil {
			o.logger.Warn("failed to record script", "error", err)
		}
	}
	for platform, result := range rec.Uploads {
		if result.Status != distribution.StatusSuccess {
			continue
		}
		if err := o.graph.RecordRelationship(ctx, rec.Request.ProductName, "published_on", platform); err != nil {
			o.logger.Warn("failed to record relationship", "error", err)
		}
	}
}
