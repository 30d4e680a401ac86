// Package workflow drives a reel from product input to published video.
// A Run advances through an explicit state machine in response to user
// decisions; the orchestrator is the only component that mutates it.
package workflow

import (
	"errors"
	"sync"
	"time"

	"autoreel/internal/distribution"
	"autoreel/internal/reel"
	"autoreel/internal/videogen"
)

type State string

const (
	StateCollectingInput       State = "collecting_input"
	StateScriptReady           State = "script_ready"
	StateAwaitingVideoConfirm  State = "awaiting_video_confirm"
	StateVideoGenerating       State = "video_generating"
	StateVideoReady            State = "video_ready"
	StateAwaitingUploadConfirm State = "awaiting_upload_confirm"
	StateUploading             State = "uploading"
	StateDone                  State = "done"
	StateFailed                State = "failed"
)

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// ErrAbandoned is returned when an operation is attempted on, or its
// in-flight result arrives at, a run the caller has abandoned.
var ErrAbandoned = errors.New("workflow run abandoned")

// Transition records one hop of the state machine.
type Transition struct {
	From State
	To   State
	At   time.Time
	Note string
}

// Run is the mutable long-lived state of one workflow. All fields are
// guarded by mu; read them through the accessor methods.
type Run struct {
	mu sync.Mutex

	state       State
	request     reel.ScriptRequest
	script      *reel.GeneratedScript
	job         *videogen.Job
	outcome     *distribution.Outcome
	abandoned   bool
	busy        bool
	transitions []Transition
}

// setState appends a transition hop. Callers must hold mu.
func (r *Run) setState(to State, note string) {
	r.transitions = append(r.transitions, Transition{
		From: r.state,
		To:   to,
		At:   time.Now(),
		Note: note,
	})
	r.state = to
}

func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Run) Request() reel.ScriptRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.request
}

func (r *Run) Script() *reel.GeneratedScript {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.script
}

func (r *Run) Job() *videogen.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.job
}

func (r *Run) Outcome() *distribution.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

func (r *Run) Abandoned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.abandoned
}

// Transitions returns a copy of the hops taken so far.
func (r *Run) Transitions() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Transition, len(r.transitions))
	copy(out, r.transitions)
	return out
}
