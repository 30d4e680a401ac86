package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const defaultParallelism = 3

// Router fans one upload request out to the selected platform adapters and
// aggregates the per-platform results. It is the only place the aggregate
// status is derived.
type Router struct {
	adapters    map[string]Adapter
	timeout     time.Duration
	parallelism int
}

type RouterOptions struct {
	Timeout     time.Duration
	Parallelism int
}

func NewRouter(adapters []Adapter, opts RouterOptions) *Router {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = defaultParallelism
	}

	byPlatform := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[normalizeKey(a.Platform())] = a
	}

	return &Router{
		adapters:    byPlatform,
		timeout:     opts.Timeout,
		parallelism: opts.Parallelism,
	}
}

// Dispatch uploads to every requested platform concurrently. One adapter's
// failure never prevents the others from running; every requested platform
// comes back with exactly one result.
func (r *Router) Dispatch(ctx context.Context, req UploadRequest) *Outcome {
	outcome := &Outcome{Results: make(map[string]UploadResult, len(req.Platforms))}

	type result struct {
		platform string
		res      UploadResult
	}

	results := make(chan result, len(req.Platforms))
	semaphore := make(chan struct{}, r.parallelism)

	seen := make(map[string]bool, len(req.Platforms))
	var dispatched int
	for _, platform := range req.Platforms {
		platform = strings.TrimSpace(platform)
		if platform == "" || seen[normalizeKey(platform)] {
			continue
		}
		seen[normalizeKey(platform)] = true
		dispatched++

		go func(platform string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results <- result{platform: platform, res: r.uploadOne(ctx, platform, req)}
		}(platform)
	}

	for i := 0; i < dispatched; i++ {
		res := <-results
		outcome.Results[res.platform] = res.res
	}

	slog.Info("Upload dispatch complete",
		"platforms", dispatched,
		"status", string(outcome.Status()),
	)

	return outcome
}

func (r *Router) uploadOne(ctx context.Context, platform string, req UploadRequest) UploadResult {
	adapter, ok := r.adapters[normalizeKey(platform)]
	if !ok {
		return UploadResult{
			Platform: platform,
			Status:   StatusFailure,
			Message:  "platform not supported",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := adapter.Authenticate(ctx); err != nil {
		slog.Warn("Platform not authenticated", "platform", platform, "error", err)
		return UploadResult{
			Platform: platform,
			Status:   StatusFailure,
			Message:  authMessage(err),
		}
	}

	res, err := adapter.Upload(ctx, Post{
		VideoURL: req.VideoURL,
		Caption:  req.Caption,
		Hashtags: req.Hashtags,
	})
	if err != nil {
		slog.Warn("Upload failed", "platform", platform, "error", err)
		return UploadResult{
			Platform: platform,
			Status:   StatusFailure,
			Message:  err.Error(),
		}
	}

	res.Platform = platform
	if res.Status == "" {
		res.Status = StatusSuccess
	}
	return res
}

func authMessage(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return err.Error()
	}
	return fmt.Sprintf("authentication failed: %v", err)
}

func normalizeKey(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}
