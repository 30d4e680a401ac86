package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"autoreel/pkg/httputil"
)

const (
	// Stable placeholder returned when no provider is configured, so the
	// rest of the workflow stays exercisable without live credentials.
	MockVideoURL = "https://example.com/placeholder-video.mp4"
	MockJobID    = "dev-mock-job-0001"

	maxErrorBody = 1000
)

var _ Generator = (*Client)(nil)

type Client struct {
	baseURL string
	apiKey  string
	http    *httputil.RetryClient
	timeout time.Duration
}

type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    httputil.NewRetryClient(opts.Client, httputil.DefaultRetryConfig()),
		timeout: opts.Timeout,
	}
}

// Configured reports whether a real provider is wired in.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

type generatePayload struct {
	Script string   `json:"script"`
	Meta   Metadata `json:"meta"`
}

type providerResponse struct {
	Status   string `json:"status"`
	VideoURL string `json:"video_url"`
	JobID    string `json:"job_id"`
	Message  string `json:"message"`
}

// Generate submits the script for rendering. Synchronous providers answer
// with a video URL, asynchronous ones with a job id; both shapes normalize
// into the Job contract. Without a configured provider a deterministic mock
// job is returned.
func (c *Client) Generate(ctx context.Context, finalScript string, meta Metadata) (*Job, error) {
	if finalScript == "" {
		return nil, fmt.Errorf("empty script")
	}

	if !c.Configured() {
		slog.Info("Video provider not configured, returning mock job")
		return &Job{
			Status:   StatusSucceeded,
			VideoURL: MockVideoURL,
			JobID:    MockJobID,
			Message:  "VIDEO_API_BASE_URL not set; returning mock URL",
		}, nil
	}

	body, err := json.Marshal(generatePayload{Script: finalScript, Meta: meta})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	return c.call(ctx, http.MethodPost, c.baseURL+"/generate", body)
}

// Status fetches the current state of an asynchronous job.
func (c *Client) Status(ctx context.Context, jobID string) (*Job, error) {
	if jobID == "" {
		return nil, fmt.Errorf("empty job id")
	}
	if !c.Configured() {
		return &Job{Status: StatusSucceeded, VideoURL: MockVideoURL, JobID: jobID}, nil
	}
	return c.call(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID, nil)
}

func (c *Client) call(ctx context.Context, method, url string, body []byte) (*Job, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil && ctx.Err() != context.Canceled {
			return failedJob(fmt.Sprintf("video provider timed out after %s", c.timeout)), nil
		}
		if ctx.Err() == context.Canceled {
			return nil, ctx.Err()
		}
		return failedJob(fmt.Sprintf("failed to reach video provider: %v", err)), nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return failedJob(fmt.Sprintf("video provider error %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))), nil
	}

	var parsed providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return failedJob(fmt.Sprintf("video provider returned invalid JSON: %v", err)), nil
	}

	return normalize(parsed), nil
}

// normalize maps the provider's response onto the Job contract:
// an explicit status wins, otherwise a URL means done and a bare job id
// means the render is still in flight.
func normalize(resp providerResponse) *Job {
	job := &Job{
		VideoURL: resp.VideoURL,
		JobID:    resp.JobID,
		Message:  resp.Message,
	}

	switch strings.ToLower(strings.TrimSpace(resp.Status)) {
	case "succeeded", "success", "completed", "done":
		job.Status = StatusSucceeded
	case "failed", "error":
		job.Status = StatusFailed
	case "processing", "running", "in_progress":
		job.Status = StatusProcessing
	case "pending", "queued":
		job.Status = StatusPending
	default:
		switch {
		case resp.VideoURL != "":
			job.Status = StatusSucceeded
		case resp.JobID != "":
			job.Status = StatusProcessing
		default:
			job.Status = StatusFailed
			if job.Message == "" {
				job.Message = "provider response carried neither video_url nor job_id"
			}
		}
	}

	// A success without a playable asset is not a success.
	if job.Status == StatusSucceeded && job.VideoURL == "" {
		job.Status = StatusFailed
		job.Message = "provider reported success without a video URL"
	}

	return job
}

func failedJob(message string) *Job {
	return &Job{Status: StatusFailed, Message: message}
}
