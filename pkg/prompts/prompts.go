package prompts

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

type Prompts struct {
	System  SystemPrompts  `yaml:"system"`
	Outline string         `yaml:"outline"`
	Script  string         `yaml:"script"`
	Caption CaptionPrompts `yaml:"caption"`
}

type SystemPrompts struct {
	Director     string `yaml:"director"`
	Scriptwriter string `yaml:"scriptwriter"`
	Strategist   string `yaml:"strategist"`
}

type CaptionPrompts struct {
	Generate string `yaml:"generate"`
	Options  string `yaml:"options"`
}

type OutlineParams struct {
	ProductName        string
	ProductDescription string
	Benefits           string
	ImageAnalysis      string
	Tone               string
	PrimaryLanguage    string
	DurationSeconds    int
	Platforms          string
	AspectRatios       string
}

type ScriptParams struct {
	Outline         string
	Tone            string
	PrimaryLanguage string
	DurationSeconds int
	Platforms       string
}

type CaptionParams struct {
	ProductName     string
	Benefits        string
	Script          string
	Tone            string
	PrimaryLanguage string
	Platforms       string
}

type CaptionOptionsParams struct {
	ProductName     string
	Benefits        string
	Script          string
	Tone            string
	PrimaryLanguage string
	Count           int
}

// Load reads prompts.yaml when present and falls back to the built-in set,
// so a fresh checkout works without any prompt file.
func Load() (*Prompts, error) {
	if _, err := os.Stat(defaultPromptsPath); os.IsNotExist(err) {
		return Defaults(), nil
	}
	return LoadFrom(defaultPromptsPath)
}

func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	p := Defaults()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	return p, nil
}

func (p *Prompts) RenderOutline(params OutlineParams) (string, error) {
	return render(p.Outline, params)
}

func (p *Prompts) RenderScript(params ScriptParams) (string, error) {
	return render(p.Script, params)
}

func (p *Prompts) RenderCaptions(params CaptionParams) (string, error) {
	return render(p.Caption.Generate, params)
}

func (p *Prompts) RenderCaptionOptions(params CaptionOptionsParams) (string, error) {
	return render(p.Caption.Options, params)
}

func render(text string, params any) (string, error) {
	tmpl, err := template.New("prompt").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}

func Defaults() *Prompts {
	return &Prompts{
		System: SystemPrompts{
			Director:     "You are a senior social media creative director.",
			Scriptwriter: "You are a senior short-form video scriptwriter.",
			Strategist:   "You are a social media strategist. You reply with strict JSON only.",
		},
		Outline: `Create a detailed outline for a {{.DurationSeconds}}-second product video script in {{.PrimaryLanguage}}.

Product: {{.ProductName}}
Description: {{.ProductDescription}}
Benefits:
{{.Benefits}}
Tone: {{.Tone}}
Target platforms: {{.Platforms}}
Preferred aspect ratios: {{.AspectRatios}}
Image analysis (if provided): {{if .ImageAnalysis}}{{.ImageAnalysis}}{{else}}N/A{{end}}

Reply with strict JSON, no prose, exactly these keys:
{"hook": "...", "value_points": "...", "objection_handling": "...", "call_to_action": "..."}

- hook: scroll-stopping opening for the first 3-5 seconds
- value_points: demonstration or value points mapping to the benefits
- objection_handling: social proof or objection handling
- call_to_action: clear CTA adapted to the platforms
Tailor the pacing to {{.DurationSeconds}}s. If image analysis is present, weave visual references into the hook.`,
		Script: `Convert the following outline into a tight voiceover script in {{.PrimaryLanguage}}.

Outline:
{{.Outline}}

Constraints:
- Total speaking duration close to {{.DurationSeconds}} seconds.
- Tone: {{.Tone}}
- Target platforms: {{.Platforms}}
- Keep narration natural; no filler, no camera jargon, no scene labels.

Reply with the script text only.`,
		Caption: CaptionPrompts{
			Generate: `Create platform-ready captions and hashtags in {{.PrimaryLanguage}}.

Target platforms: {{.Platforms}}
Product: {{.ProductName}}
Key benefits: {{.Benefits}}
Tone: {{.Tone}}

Script context:
{{.Script}}

Reply with strict JSON: an object keyed by platform name, each value
{"caption": "1-2 lines with a strong CTA", "hashtags": ["relevant tags without the # symbol"]}.
Provide between 8 and 10 hashtags per platform, mixing broad and niche terms.`,
			Options: `Propose {{.Count}} distinct caption options in {{.PrimaryLanguage}} for the content below.

Product: {{.ProductName}}
Key benefits: {{.Benefits}}

Script context:
{{.Script}}

Constraints:
- 1-2 lines each, strong hook and clear CTA.
- Vary style within the overall tone "{{.Tone}}".

Reply with a strict JSON array of strings.`,
		},
	}
}
