package reel

import (
	"fmt"
	"strings"
)

// AllowedTones are the tones the prompt set knows how to write in.
var AllowedTones = []string{
	"Friendly",
	"Professional",
	"Inspirational",
	"Humorous",
	"Serious",
	"Casual",
}

const DefaultTone = "Friendly"

// ScriptRequest captures everything needed to produce a product reel script.
// It is immutable once handed to a workflow run.
type ScriptRequest struct {
	ProductName        string
	ProductDescription string
	Benefits           []string
	ImageAnalysis      string
	Tone               string
	PrimaryLanguage    string
	DurationSeconds    int
	Platforms          []string
	AspectRatios       []string
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func (r *ScriptRequest) Validate() error {
	if strings.TrimSpace(r.ProductName) == "" {
		return &ValidationError{Field: "product_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.ProductDescription) == "" && len(r.cleanBenefits()) == 0 {
		return &ValidationError{Field: "product_description", Reason: "provide a description or at least one benefit"}
	}
	if r.DurationSeconds <= 0 {
		return &ValidationError{Field: "duration_seconds", Reason: "must be positive"}
	}
	if len(r.Platforms) == 0 {
		return &ValidationError{Field: "platforms", Reason: "select at least one platform"}
	}
	return nil
}

// NormalizedTone maps free-form tone input onto the allowed set,
// falling back to the default rather than failing the request.
func (r *ScriptRequest) NormalizedTone() string {
	tone := strings.TrimSpace(r.Tone)
	for _, allowed := range AllowedTones {
		if strings.EqualFold(tone, allowed) {
			return allowed
		}
	}
	return DefaultTone
}

func (r *ScriptRequest) cleanBenefits() []string {
	var out []string
	for _, b := range r.Benefits {
		if s := strings.TrimSpace(b); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Outline is the structured skeleton the final script is written from.
type Outline struct {
	Hook              string
	ValuePoints       string
	ObjectionHandling string
	CallToAction      string
}

func (o Outline) Empty() bool {
	return o.Hook == "" && o.ValuePoints == "" && o.ObjectionHandling == "" && o.CallToAction == ""
}

// PlatformCaption is the caption and hashtag set tailored to one platform.
type PlatformCaption struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// GeneratedScript is the full script package for one generation pass.
// Regeneration replaces the value wholesale, captions included.
type GeneratedScript struct {
	Outline     Outline
	FinalScript string
	Captions    map[string]PlatformCaption
}
