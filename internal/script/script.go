package script

import (
	"context"
	"fmt"

	"autoreel/internal/reel"
)

// Generator produces a complete script package from a product request.
// Implementations must categorize every provider failure as a
// *GenerationError; nothing else crosses this boundary.
type Generator interface {
	Generate(ctx context.Context, req reel.ScriptRequest) (*reel.GeneratedScript, error)
}

// Generation stages, used for diagnostics.
const (
	StageOutline  = "outline"
	StageScript   = "script"
	StageCaptions = "captions"
)

type GenerationError struct {
	Stage  string
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("script generation failed at %s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("script generation failed at %s: %s", e.Stage, e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }
