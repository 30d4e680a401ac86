package workflow

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"autoreel/internal/distribution"
	"autoreel/internal/history"
	"autoreel/internal/reel"
	"autoreel/internal/script"
	"autoreel/internal/videogen"
)

type fakeScripts struct {
	calls atomic.Int32
	errs  []error // consumed per call; nil entry means success
}

func (f *fakeScripts) Generate(ctx context.Context, req reel.ScriptRequest) (*reel.GeneratedScript, error) {
	n := int(f.calls.Add(1))
	if n <= len(f.errs) && f.errs[n-1] != nil {
		return nil, f.errs[n-1]
	}
	captions := map[string]reel.PlatformCaption{}
	for _, p := range req.Platforms {
		captions[p] = reel.PlatformCaption{
			Caption:  "caption " + p,
			Hashtags: []string{"one", "two", "three", "four", "five", "six", "seven", "eight"},
		}
	}
	return &reel.GeneratedScript{
		Outline:     reel.Outline{Hook: "hook", CallToAction: "buy now"},
		FinalScript: "take " + itoa(n),
		Captions:    captions,
	}, nil
}

type fakeVideos struct {
	genCalls    atomic.Int32
	statusCalls atomic.Int32
	job         *videogen.Job
	statusSeq   []*videogen.Job
	block       chan struct{} // when set, Generate waits on it
	started     chan struct{}
}

func (f *fakeVideos) Generate(ctx context.Context, finalScript string, meta videogen.Metadata) (*videogen.Job, error) {
	f.genCalls.Add(1)
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.job, nil
}

func (f *fakeVideos) Status(ctx context.Context, jobID string) (*videogen.Job, error) {
	n := int(f.statusCalls.Add(1))
	if n > len(f.statusSeq) {
		n = len(f.statusSeq)
	}
	return f.statusSeq[n-1], nil
}

type fakeAdapter struct {
	name    string
	authErr error
	calls   atomic.Int32
}

func (a *fakeAdapter) Platform() string { return a.name }

func (a *fakeAdapter) Authenticate(ctx context.Context) error { return a.authErr }

func (a *fakeAdapter) Upload(ctx context.Context, post distribution.Post) (distribution.UploadResult, error) {
	a.calls.Add(1)
	return distribution.UploadResult{
		Platform: a.name,
		Status:   distribution.StatusSuccess,
		URL:      "https://example.com/" + a.name,
	}, nil
}

type captureStore struct {
	records []history.Record
}

func (s *captureStore) Record(ctx context.Context, rec history.Record) error {
	s.records = append(s.records, rec)
	return nil
}

func itoa(n int) string {
	return string(rune('0' + n))
}

func succeededJob() *videogen.Job {
	return &videogen.Job{Status: videogen.StatusSucceeded, VideoURL: "https://example.com/v.mp4"}
}

func testRequest() reel.ScriptRequest {
	return reel.ScriptRequest{
		ProductName:        "Acme Smart Bottle",
		ProductDescription: "A bottle that tracks hydration",
		Tone:               "Humorous",
		DurationSeconds:    45,
		Platforms:          []string{"TikTok", "YouTube"},
	}
}

func newTestOrchestrator(t *testing.T, scripts *fakeScripts, videos *fakeVideos, adapters []distribution.Adapter, store history.Store) *Orchestrator {
	t.Helper()
	if scripts == nil {
		scripts = &fakeScripts{}
	}
	if videos == nil {
		videos = &fakeVideos{job: succeededJob()}
	}
	if adapters == nil {
		adapters = []distribution.Adapter{
			&fakeAdapter{name: "TikTok"},
			&fakeAdapter{name: "YouTube"},
		}
	}
	return New(Options{
		Scripts:      scripts,
		Videos:       videos,
		Router:       distribution.NewRouter(adapters, distribution.RouterOptions{}),
		Store:        store,
		PollInterval: time.Millisecond,
		VideoTimeout: time.Second,
	})
}

func TestNewRunRejectsInvalidRequest(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, nil, nil)

	_, err := o.NewRun(reel.ScriptRequest{DurationSeconds: 30, Platforms: []string{"TikTok"}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *reel.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestHappyPath(t *testing.T) {
	scripts := &fakeScripts{}
	store := &captureStore{}
	o := newTestOrchestrator(t, scripts, nil, nil, store)
	ctx := context.Background()

	run, err := o.NewRun(testRequest())
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if run.State() != StateCollectingInput {
		t.Fatalf("initial state = %s", run.State())
	}

	generated, err := o.Submit(ctx, run)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if generated == nil || generated.FinalScript == "" {
		t.Fatal("expected a generated script")
	}
	if run.State() != StateAwaitingVideoConfirm {
		t.Fatalf("state after submit = %s", run.State())
	}

	job, err := o.ConfirmVideo(ctx, run)
	if err != nil {
		t.Fatalf("ConfirmVideo: %v", err)
	}
	if job.Status != videogen.StatusSucceeded || job.VideoURL == "" {
		t.Fatalf("job = %+v", job)
	}
	if run.State() != StateAwaitingUploadConfirm {
		t.Fatalf("state after video = %s", run.State())
	}

	outcome, err := o.ConfirmUpload(ctx, run, "caption", []string{"tag"}, nil)
	if err != nil {
		t.Fatalf("ConfirmUpload: %v", err)
	}
	if run.State() != StateDone {
		t.Fatalf("final state = %s", run.State())
	}
	if got := outcome.Status(); got != distribution.AllSucceeded {
		t.Errorf("aggregate = %s", got)
	}
	if len(outcome.Results) != 2 {
		t.Errorf("results = %d, want 2", len(outcome.Results))
	}

	// the run passed through the artifact states on the way
	var sawScriptReady, sawVideoReady bool
	for _, tr := range run.Transitions() {
		if tr.To == StateScriptReady {
			sawScriptReady = true
		}
		if tr.To == StateVideoReady {
			sawVideoReady = true
		}
	}
	if !sawScriptReady || !sawVideoReady {
		t.Errorf("transition log missing artifact hops: %+v", run.Transitions())
	}

	if len(store.records) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(store.records))
	}
	if store.records[0].Outcome != string(distribution.AllSucceeded) {
		t.Errorf("recorded outcome = %q", store.records[0].Outcome)
	}
}

func TestSubmitFailureIsRetryable(t *testing.T) {
	scripts := &fakeScripts{errs: []error{&script.GenerationError{Stage: script.StageOutline, Reason: "rate limited"}}}
	o := newTestOrchestrator(t, scripts, nil, nil, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())

	_, err := o.Submit(ctx, run)
	if err == nil {
		t.Fatal("expected generation error")
	}
	var genErr *script.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if run.State() != StateFailed {
		t.Fatalf("state = %s, want failed", run.State())
	}

	if _, err := o.Submit(ctx, run); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if run.State() != StateAwaitingVideoConfirm {
		t.Fatalf("state after resubmit = %s", run.State())
	}
}

func TestRejectRegeneratesWithoutVideoCall(t *testing.T) {
	scripts := &fakeScripts{}
	videos := &fakeVideos{job: succeededJob()}
	o := newTestOrchestrator(t, scripts, videos, nil, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	first, _ := o.Submit(ctx, run)

	second, err := o.Reject(ctx, run)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if second.FinalScript == first.FinalScript {
		t.Error("script was not replaced")
	}
	if run.State() != StateAwaitingVideoConfirm {
		t.Fatalf("state after reject = %s", run.State())
	}
	if videos.genCalls.Load() != 0 {
		t.Errorf("reject triggered %d video calls", videos.genCalls.Load())
	}
	if scripts.calls.Load() != 2 {
		t.Errorf("script generator called %d times, want 2", scripts.calls.Load())
	}
}

func TestDoubleConfirmVideoCallsProviderOnce(t *testing.T) {
	videos := &fakeVideos{job: succeededJob()}
	o := newTestOrchestrator(t, nil, videos, nil, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	if _, err := o.Submit(ctx, run); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	first, err := o.ConfirmVideo(ctx, run)
	if err != nil {
		t.Fatalf("first ConfirmVideo: %v", err)
	}
	second, err := o.ConfirmVideo(ctx, run)
	if err != nil {
		t.Fatalf("second ConfirmVideo should be a no-op, got %v", err)
	}
	if second != first {
		t.Error("stale confirmation returned a different job")
	}
	if videos.genCalls.Load() != 1 {
		t.Errorf("provider called %d times, want 1", videos.genCalls.Load())
	}
}

func TestConcurrentConfirmVideoCallsProviderOnce(t *testing.T) {
	videos := &fakeVideos{
		job:     succeededJob(),
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	o := newTestOrchestrator(t, nil, videos, nil, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	if _, err := o.Submit(ctx, run); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := o.ConfirmVideo(ctx, run)
		done <- err
	}()
	<-videos.started

	// second click while generation is in flight
	if _, err := o.ConfirmVideo(ctx, run); err != nil {
		t.Fatalf("in-flight confirmation should be a no-op, got %v", err)
	}

	close(videos.block)
	if err := <-done; err != nil {
		t.Fatalf("ConfirmVideo: %v", err)
	}
	if videos.genCalls.Load() != 1 {
		t.Errorf("provider called %d times, want 1", videos.genCalls.Load())
	}
}

func TestVideoFailureAllowsRetryWithoutScriptRegen(t *testing.T) {
	scripts := &fakeScripts{}
	videos := &fakeVideos{job: &videogen.Job{Status: videogen.StatusFailed, Message: "render crashed"}}
	o := newTestOrchestrator(t, scripts, videos, nil, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	confirmed, _ := o.Submit(ctx, run)

	job, err := o.ConfirmVideo(ctx, run)
	if err == nil {
		t.Fatal("expected video generation error")
	}
	var genErr *videogen.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected videogen.GenerationError, got %T", err)
	}
	if job == nil || job.Status != videogen.StatusFailed {
		t.Fatalf("job = %+v", job)
	}
	if run.State() != StateFailed {
		t.Fatalf("state = %s, want failed", run.State())
	}

	videos.job = succeededJob()
	retried, err := o.RetryVideo(ctx, run)
	if err != nil {
		t.Fatalf("RetryVideo: %v", err)
	}
	if retried.Status != videogen.StatusSucceeded {
		t.Fatalf("retried job = %+v", retried)
	}
	if run.State() != StateAwaitingUploadConfirm {
		t.Fatalf("state after retry = %s", run.State())
	}
	if scripts.calls.Load() != 1 {
		t.Errorf("script generator called %d times, want 1", scripts.calls.Load())
	}
	if run.Script() != confirmed {
		t.Error("retry replaced the script")
	}
}

func TestUploadingUnreachableWithoutSucceededJob(t *testing.T) {
	adapters := []distribution.Adapter{&fakeAdapter{name: "TikTok"}}
	tiktok := adapters[0].(*fakeAdapter)
	videos := &fakeVideos{job: &videogen.Job{Status: videogen.StatusFailed, Message: "render crashed"}}
	o := newTestOrchestrator(t, nil, videos, adapters, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	_, _ = o.Submit(ctx, run)
	_, _ = o.ConfirmVideo(ctx, run)

	outcome, err := o.ConfirmUpload(ctx, run, "c", nil, nil)
	if err != nil {
		t.Fatalf("stale upload confirmation should be a no-op, got %v", err)
	}
	if outcome != nil {
		t.Errorf("outcome = %+v, want nil", outcome)
	}
	if tiktok.calls.Load() != 0 {
		t.Errorf("adapter was called %d times", tiktok.calls.Load())
	}
	if run.State() != StateFailed {
		t.Fatalf("state = %s", run.State())
	}
}

func TestPartialUploadStillCompletes(t *testing.T) {
	adapters := []distribution.Adapter{
		&fakeAdapter{name: "TikTok", authErr: &distribution.AuthError{Platform: "TikTok", Reason: "missing TIKTOK_ACCESS_TOKEN"}},
		&fakeAdapter{name: "YouTube"},
	}
	o := newTestOrchestrator(t, nil, nil, adapters, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	_, _ = o.Submit(ctx, run)
	_, _ = o.ConfirmVideo(ctx, run)

	outcome, err := o.ConfirmUpload(ctx, run, "caption", nil, []string{"TikTok", "YouTube"})
	if err != nil {
		t.Fatalf("ConfirmUpload: %v", err)
	}
	if run.State() != StateDone {
		t.Fatalf("state = %s, want done", run.State())
	}
	if got := outcome.Status(); got != distribution.Partial {
		t.Errorf("aggregate = %s, want partial", got)
	}
}

func TestDeclineUploadCompletesRun(t *testing.T) {
	adapters := []distribution.Adapter{&fakeAdapter{name: "TikTok"}}
	tiktok := adapters[0].(*fakeAdapter)
	store := &captureStore{}
	o := newTestOrchestrator(t, nil, nil, adapters, store)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	_, _ = o.Submit(ctx, run)
	_, _ = o.ConfirmVideo(ctx, run)

	if err := o.DeclineUpload(ctx, run); err != nil {
		t.Fatalf("DeclineUpload: %v", err)
	}
	if run.State() != StateDone {
		t.Fatalf("state = %s, want done", run.State())
	}
	if tiktok.calls.Load() != 0 {
		t.Errorf("decline dispatched %d uploads", tiktok.calls.Load())
	}
	if len(store.records) != 1 {
		t.Errorf("recorded %d runs, want 1", len(store.records))
	}
	if store.records[0].Outcome != "" {
		t.Errorf("declined run should have no aggregate, got %q", store.records[0].Outcome)
	}
}

func TestAbandonDiscardsInFlightVideo(t *testing.T) {
	videos := &fakeVideos{
		job:     succeededJob(),
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	o := newTestOrchestrator(t, nil, videos, nil, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	_, _ = o.Submit(ctx, run)

	done := make(chan error, 1)
	go func() {
		_, err := o.ConfirmVideo(ctx, run)
		done <- err
	}()
	<-videos.started

	o.Abandon(run)
	close(videos.block)

	if err := <-done; !errors.Is(err, ErrAbandoned) {
		t.Fatalf("in-flight result applied to abandoned run: %v", err)
	}
	if run.Job() != nil {
		t.Error("abandoned run kept the provider response")
	}
	if !run.Abandoned() || run.State() != StateFailed {
		t.Fatalf("abandoned=%v state=%s", run.Abandoned(), run.State())
	}

	// all further operations are dead
	if _, err := o.Submit(ctx, run); !errors.Is(err, ErrAbandoned) {
		t.Errorf("Submit on abandoned run: %v", err)
	}
	if _, err := o.RetryVideo(ctx, run); !errors.Is(err, ErrAbandoned) {
		t.Errorf("RetryVideo on abandoned run: %v", err)
	}
}

func TestAbandonTerminalRunIsNoOp(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, nil, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	_, _ = o.Submit(ctx, run)
	_, _ = o.ConfirmVideo(ctx, run)
	_ = o.DeclineUpload(ctx, run)

	o.Abandon(run)
	if run.Abandoned() {
		t.Error("completed run was marked abandoned")
	}
	if run.State() != StateDone {
		t.Errorf("state = %s, want done", run.State())
	}
}

func TestAsyncVideoPolling(t *testing.T) {
	videos := &fakeVideos{
		job: &videogen.Job{Status: videogen.StatusProcessing, JobID: "job-42"},
		statusSeq: []*videogen.Job{
			{Status: videogen.StatusProcessing, JobID: "job-42"},
			{Status: videogen.StatusSucceeded, JobID: "job-42", VideoURL: "https://example.com/async.mp4"},
		},
	}
	o := newTestOrchestrator(t, nil, videos, nil, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	_, _ = o.Submit(ctx, run)

	job, err := o.ConfirmVideo(ctx, run)
	if err != nil {
		t.Fatalf("ConfirmVideo: %v", err)
	}
	if job.Status != videogen.StatusSucceeded || job.VideoURL == "" {
		t.Fatalf("job = %+v", job)
	}
	if videos.statusCalls.Load() != 2 {
		t.Errorf("status polled %d times, want 2", videos.statusCalls.Load())
	}
}

func TestCanceledContextDuringPollingReportsCanceled(t *testing.T) {
	videos := &fakeVideos{
		job: &videogen.Job{Status: videogen.StatusProcessing, JobID: "job-42"},
		statusSeq: []*videogen.Job{
			{Status: videogen.StatusProcessing, JobID: "job-42"},
		},
	}
	o := newTestOrchestrator(t, nil, videos, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	run, _ := o.NewRun(testRequest())
	_, _ = o.Submit(ctx, run)

	cancel()
	job, err := o.ConfirmVideo(ctx, run)
	if err == nil {
		t.Fatal("expected video generation error")
	}
	var genErr *videogen.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected videogen.GenerationError, got %T", err)
	}
	if !strings.Contains(genErr.Reason, "canceled") {
		t.Errorf("reason = %q, want canceled", genErr.Reason)
	}
	if strings.Contains(genErr.Reason, "timed out") {
		t.Errorf("reason = %q, cancellation is not a timeout", genErr.Reason)
	}
	if job == nil || job.Status != videogen.StatusFailed {
		t.Fatalf("job = %+v", job)
	}
}

func TestDoubleConfirmUploadDispatchesOnce(t *testing.T) {
	adapters := []distribution.Adapter{&fakeAdapter{name: "TikTok"}}
	tiktok := adapters[0].(*fakeAdapter)
	o := newTestOrchestrator(t, nil, nil, adapters, nil)
	ctx := context.Background()

	run, _ := o.NewRun(testRequest())
	_, _ = o.Submit(ctx, run)
	_, _ = o.ConfirmVideo(ctx, run)

	first, err := o.ConfirmUpload(ctx, run, "c", nil, []string{"TikTok"})
	if err != nil {
		t.Fatalf("ConfirmUpload: %v", err)
	}
	second, err := o.ConfirmUpload(ctx, run, "c", nil, []string{"TikTok"})
	if err != nil {
		t.Fatalf("second ConfirmUpload should be a no-op, got %v", err)
	}
	if second != first {
		t.Error("stale confirmation returned a different outcome")
	}
	if tiktok.calls.Load() != 1 {
		t.Errorf("adapter called %d times, want 1", tiktok.calls.Load())
	}
}
