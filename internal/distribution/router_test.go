package distribution

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type fakeAdapter struct {
	platform  string
	authErr   error
	uploadErr error
	result    UploadResult
	delay     time.Duration
	calls     int32
}

func (f *fakeAdapter) Platform() string { return f.platform }

func (f *fakeAdapter) Authenticate(_ context.Context) error { return f.authErr }

func (f *fakeAdapter) Upload(_ context.Context, _ Post) (UploadResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.uploadErr != nil {
		return UploadResult{}, f.uploadErr
	}
	res := f.result
	if res.Status == "" {
		res.Status = StatusSuccess
	}
	return res, nil
}

func okAdapter(platform string) *fakeAdapter {
	return &fakeAdapter{platform: platform, result: UploadResult{Status: StatusSuccess, URL: "https://" + platform + ".example.com/post/1"}}
}

func request(platforms ...string) UploadRequest {
	return UploadRequest{
		VideoURL:  "https://cdn.example.com/v/1.mp4",
		Caption:   "Stay hydrated.",
		Hashtags:  []string{"hydration", "smartBottle"},
		Platforms: platforms,
	}
}

func TestDispatchOneResultPerPlatform(t *testing.T) {
	tests := []struct {
		name      string
		platforms []string
	}{
		{"single", []string{"TikTok"}},
		{"pair", []string{"TikTok", "YouTube"}},
		{"five", []string{"TikTok", "YouTube", "LinkedIn", "Facebook", "Twitter/X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var adapters []Adapter
			for _, p := range tt.platforms {
				adapters = append(adapters, okAdapter(p))
			}
			router := NewRouter(adapters, RouterOptions{})

			outcome := router.Dispatch(context.Background(), request(tt.platforms...))

			if len(outcome.Results) != len(tt.platforms) {
				t.Fatalf("got %d results, want %d", len(outcome.Results), len(tt.platforms))
			}
			for _, p := range tt.platforms {
				if _, ok := outcome.Results[p]; !ok {
					t.Errorf("missing result for %s", p)
				}
			}
			if outcome.Status() != AllSucceeded {
				t.Errorf("status = %q, want all_succeeded", outcome.Status())
			}
		})
	}
}

func TestDispatchOneFailureDoesNotBlockOthers(t *testing.T) {
	tiktok := &fakeAdapter{platform: "TikTok", uploadErr: errors.New("chunk upload rejected")}
	youtube := okAdapter("YouTube")
	linkedin := okAdapter("LinkedIn")

	router := NewRouter([]Adapter{tiktok, youtube, linkedin}, RouterOptions{})

	outcome := router.Dispatch(context.Background(), request("TikTok", "YouTube", "LinkedIn"))

	if len(outcome.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(outcome.Results))
	}
	if outcome.Results["TikTok"].Status != StatusFailure {
		t.Error("TikTok should have failed")
	}
	if outcome.Results["YouTube"].Status != StatusSuccess {
		t.Error("YouTube should have succeeded despite the TikTok failure")
	}
	if atomic.LoadInt32(&youtube.calls) != 1 || atomic.LoadInt32(&linkedin.calls) != 1 {
		t.Error("remaining adapters must still be invoked")
	}
	if outcome.Status() != Partial {
		t.Errorf("status = %q, want partial", outcome.Status())
	}
}

func TestDispatchUnconfiguredAdapterYieldsAuthFailure(t *testing.T) {
	tiktok := &fakeAdapter{
		platform: "TikTok",
		authErr:  &AuthError{Platform: "TikTok", Reason: "missing TIKTOK_ACCESS_TOKEN"},
	}
	youtube := okAdapter("YouTube")

	router := NewRouter([]Adapter{tiktok, youtube}, RouterOptions{})

	outcome := router.Dispatch(context.Background(), request("TikTok", "YouTube"))

	res := outcome.Results["TikTok"]
	if res.Status != StatusFailure {
		t.Fatal("unconfigured platform must yield a failure result, not be skipped")
	}
	if !strings.Contains(res.Message, "TIKTOK_ACCESS_TOKEN") {
		t.Errorf("message = %q, want credential diagnostic", res.Message)
	}
	if atomic.LoadInt32(&tiktok.calls) != 0 {
		t.Error("upload must not run when authentication fails")
	}
	if outcome.Results["YouTube"].Status != StatusSuccess {
		t.Error("YouTube should succeed")
	}
	if outcome.Status() != Partial {
		t.Errorf("status = %q, want partial", outcome.Status())
	}
}

func TestDispatchUnknownPlatform(t *testing.T) {
	router := NewRouter([]Adapter{okAdapter("YouTube")}, RouterOptions{})

	outcome := router.Dispatch(context.Background(), request("MySpace", "YouTube"))

	res, ok := outcome.Results["MySpace"]
	if !ok {
		t.Fatal("unknown platform must still produce a result")
	}
	if res.Status != StatusFailure || !strings.Contains(res.Message, "not supported") {
		t.Errorf("result = %+v, want unsupported-platform failure", res)
	}
}

func TestDispatchAllFailed(t *testing.T) {
	a := &fakeAdapter{platform: "TikTok", uploadErr: errors.New("down")}
	b := &fakeAdapter{platform: "YouTube", uploadErr: errors.New("down")}

	router := NewRouter([]Adapter{a, b}, RouterOptions{})

	outcome := router.Dispatch(context.Background(), request("TikTok", "YouTube"))
	if outcome.Status() != AllFailed {
		t.Errorf("status = %q, want all_failed", outcome.Status())
	}
}

func TestDispatchCompletionOrderIndependent(t *testing.T) {
	slow := okAdapter("TikTok")
	slow.delay = 50 * time.Millisecond
	fast := okAdapter("YouTube")

	router := NewRouter([]Adapter{slow, fast}, RouterOptions{Parallelism: 2})

	outcome := router.Dispatch(context.Background(), request("TikTok", "YouTube"))

	if len(outcome.Results) != 2 || outcome.Status() != AllSucceeded {
		t.Errorf("outcome = %+v, want both successes regardless of completion order", outcome.Results)
	}
}

func TestOutcomeStatusDerivation(t *testing.T) {
	success := UploadResult{Status: StatusSuccess}
	failure := UploadResult{Status: StatusFailure}

	tests := []struct {
		name    string
		results map[string]UploadResult
		want    AggregateStatus
	}{
		{"allSucceeded", map[string]UploadResult{"a": success, "b": success}, AllSucceeded},
		{"allFailed", map[string]UploadResult{"a": failure, "b": failure}, AllFailed},
		{"mixed", map[string]UploadResult{"a": success, "b": failure}, Partial},
		{"single", map[string]UploadResult{"a": success}, AllSucceeded},
		{"empty", map[string]UploadResult{}, AllFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Outcome{Results: tt.results}
			if got := o.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}
