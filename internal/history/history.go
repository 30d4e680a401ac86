// Package history persists completed workflow runs so past reels can be
// reviewed later. The workflow core never reads this store back.
package history

import (
	"context"
	"time"

	"autoreel/internal/distribution"
	"autoreel/internal/reel"
	"autoreel/internal/videogen"
)

// Record captures everything a finished run produced.
type Record struct {
	CreatedAt time.Time                            `json:"created_at"`
	Request   reel.ScriptRequest                   `json:"request"`
	Script    *reel.GeneratedScript                `json:"script,omitempty"`
	Job       *videogen.Job                        `json:"video_job,omitempty"`
	Uploads   map[string]distribution.UploadResult `json:"uploads,omitempty"`
	Outcome   string                               `json:"outcome,omitempty"`
}

// Store accepts completed runs for persistence.
type Store interface {
	Record(ctx context.Context, rec Record) error
}

// Discard is a Store that drops every record. Used when history is
// disabled in config.
type Discard struct{}

var _ Store = Discard{}

func (Discard) Record(ctx context.Context, rec Record) error { return nil }
