package distribution

import (
	"context"
	"fmt"
)

type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusFailure ResultStatus = "failure"
)

type AggregateStatus string

const (
	AllSucceeded AggregateStatus = "all_succeeded"
	Partial      AggregateStatus = "partial"
	AllFailed    AggregateStatus = "all_failed"
)

// UploadRequest is one publish action fanned out to the selected platforms.
// Immutable once dispatched.
type UploadRequest struct {
	VideoURL  string
	Caption   string
	Hashtags  []string
	Platforms []string
}

// Post is the per-adapter slice of an UploadRequest.
type Post struct {
	VideoURL string
	Caption  string
	Hashtags []string
}

type UploadResult struct {
	Platform  string
	Status    ResultStatus
	URL       string
	Message   string
	Simulated bool
}

// Adapter is the platform-specific upload capability. Implementations
// validate their own credentials; Authenticate returns an *AuthError when
// they are absent or invalid.
type Adapter interface {
	Platform() string
	Authenticate(ctx context.Context) error
	Upload(ctx context.Context, post Post) (UploadResult, error)
}

type AuthError struct {
	Platform string
	Reason   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s auth: %s", e.Platform, e.Reason)
}

// Outcome aggregates exactly one result per requested platform.
type Outcome struct {
	Results map[string]UploadResult
}

// Status derives the aggregate verdict. An empty outcome counts as
// all_failed; the router never produces one for a valid request.
func (o *Outcome) Status() AggregateStatus {
	if len(o.Results) == 0 {
		return AllFailed
	}

	succeeded, failed := 0, 0
	for _, r := range o.Results {
		if r.Status == StatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}

	switch {
	case failed == 0:
		return AllSucceeded
	case succeeded == 0:
		return AllFailed
	default:
		return Partial
	}
}

func (o *Outcome) Succeeded() []UploadResult {
	return o.filter(StatusSuccess)
}

func (o *Outcome) Failed() []UploadResult {
	return o.filter(StatusFailure)
}

func (o *Outcome) filter(status ResultStatus) []UploadResult {
	var out []UploadResult
	for _, r := range o.Results {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
