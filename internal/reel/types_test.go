package reel

import (
	"errors"
	"testing"
)

func validRequest() ScriptRequest {
	return ScriptRequest{
		ProductName:        "Acme Smart Bottle",
		ProductDescription: "A bottle that reminds you to drink water.",
		Benefits:           []string{"Tracks hydration", "Glows when you slack"},
		Tone:               "Humorous",
		PrimaryLanguage:    "English",
		DurationSeconds:    45,
		Platforms:          []string{"TikTok", "Instagram"},
		AspectRatios:       []string{"9:16 (vertical)"},
	}
}

func TestScriptRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ScriptRequest)
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(r *ScriptRequest) {},
		},
		{
			name:      "emptyProductName",
			mutate:    func(r *ScriptRequest) { r.ProductName = "  " },
			wantField: "product_name",
		},
		{
			name: "noDescriptionNoBenefits",
			mutate: func(r *ScriptRequest) {
				r.ProductDescription = ""
				r.Benefits = []string{"", "  "}
			},
			wantField: "product_description",
		},
		{
			name:      "zeroDuration",
			mutate:    func(r *ScriptRequest) { r.DurationSeconds = 0 },
			wantField: "duration_seconds",
		},
		{
			name:      "negativeDuration",
			mutate:    func(r *ScriptRequest) { r.DurationSeconds = -5 },
			wantField: "duration_seconds",
		},
		{
			name:      "noPlatforms",
			mutate:    func(r *ScriptRequest) { r.Platforms = nil },
			wantField: "platforms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestBenefitsOnlyIsValid(t *testing.T) {
	req := validRequest()
	req.ProductDescription = ""
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestNormalizedTone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Humorous", "Humorous"},
		{"humorous", "Humorous"},
		{"SERIOUS", "Serious"},
		{"", "Friendly"},
		{"sarcastic", "Friendly"},
		{"  casual  ", "Casual"},
	}

	for _, tt := range tests {
		req := ScriptRequest{Tone: tt.in}
		if got := req.NormalizedTone(); got != tt.want {
			t.Errorf("NormalizedTone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
