package videogen

import (
	"context"
	"fmt"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Job is the normalized view of one render request, whatever shape the
// provider answered in. A succeeded job always carries a video URL.
type Job struct {
	Status   Status
	VideoURL string
	JobID    string
	Message  string
}

func (j *Job) Terminal() bool {
	return j.Status == StatusSucceeded || j.Status == StatusFailed
}

// Metadata travels alongside the script so the provider can honor the
// requested formats.
type Metadata struct {
	ProductName     string   `json:"product_name"`
	Platforms       []string `json:"platforms"`
	AspectRatios    []string `json:"aspect_ratios"`
	DurationSeconds int      `json:"duration_seconds"`
}

// Generator is the render boundary. Provider faults come back as failed
// jobs, not Go errors; errors are reserved for unusable requests and
// cancelled contexts.
type Generator interface {
	Generate(ctx context.Context, finalScript string, meta Metadata) (*Job, error)
	Status(ctx context.Context, jobID string) (*Job, error)
}

type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("video generation failed: %s", e.Reason)
}

// Failed wraps a job-level failure in the categorized error the workflow
// surfaces to its caller.
func Failed(j *Job) error {
	reason := j.Message
	if reason == "" {
		reason = "provider reported failure"
	}
	return &GenerationError{Reason: reason}
}
