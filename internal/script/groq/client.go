package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/conneroisu/groq-go"

	"autoreel/internal/reel"
	"autoreel/internal/script"
	"autoreel/pkg/prompts"
)

var _ script.Generator = (*Client)(nil)

type Client struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

func NewClient(apiKey, model string, p *prompts.Prompts, opts ...groq.Opts) (*Client, error) {
	client, err := groq.NewClient(apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

// Generate runs the three-stage pass: outline, script, captions.
// Each stage feeds the next; captions cover every requested platform.
func (c *Client) Generate(ctx context.Context, req reel.ScriptRequest) (*reel.GeneratedScript, error) {
	outline, err := c.generateOutline(ctx, req)
	if err != nil {
		return nil, err
	}

	finalScript, err := c.generateScript(ctx, req, outline)
	if err != nil {
		return nil, err
	}

	captions, err := c.generateCaptions(ctx, req, finalScript)
	if err != nil {
		return nil, err
	}

	return &reel.GeneratedScript{
		Outline:     outline,
		FinalScript: finalScript,
		Captions:    captions,
	}, nil
}

type outlineResponse struct {
	Hook              string `json:"hook"`
	ValuePoints       string `json:"value_points"`
	ObjectionHandling string `json:"objection_handling"`
	CallToAction      string `json:"call_to_action"`
}

func (c *Client) generateOutline(ctx context.Context, req reel.ScriptRequest) (reel.Outline, error) {
	prompt, err := c.prompts.RenderOutline(prompts.OutlineParams{
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
		Benefits:           benefitsBlock(req.Benefits),
		ImageAnalysis:      req.ImageAnalysis,
		Tone:               req.NormalizedTone(),
		PrimaryLanguage:    req.PrimaryLanguage,
		DurationSeconds:    req.DurationSeconds,
		Platforms:          strings.Join(req.Platforms, ", "),
		AspectRatios:       strings.Join(req.AspectRatios, ", "),
	})
	if err != nil {
		return reel.Outline{}, &script.GenerationError{Stage: script.StageOutline, Reason: "render prompt", Err: err}
	}

	content, err := c.completeJSON(ctx, c.prompts.System.Director, prompt)
	if err != nil {
		return reel.Outline{}, &script.GenerationError{Stage: script.StageOutline, Reason: "provider call", Err: err}
	}

	var parsed outlineResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return reel.Outline{}, &script.GenerationError{Stage: script.StageOutline, Reason: "malformed completion", Err: err}
	}

	outline := reel.Outline{
		Hook:              parsed.Hook,
		ValuePoints:       parsed.ValuePoints,
		ObjectionHandling: parsed.ObjectionHandling,
		CallToAction:      parsed.CallToAction,
	}
	if outline.Empty() {
		return reel.Outline{}, &script.GenerationError{Stage: script.StageOutline, Reason: "empty outline"}
	}

	return outline, nil
}

func (c *Client) generateScript(ctx context.Context, req reel.ScriptRequest, outline reel.Outline) (string, error) {
	prompt, err := c.prompts.RenderScript(prompts.ScriptParams{
		Outline:         outlineBlock(outline),
		Tone:            req.NormalizedTone(),
		PrimaryLanguage: req.PrimaryLanguage,
		DurationSeconds: req.DurationSeconds,
		Platforms:       strings.Join(req.Platforms, ", "),
	})
	if err != nil {
		return "", &script.GenerationError{Stage: script.StageScript, Reason: "render prompt", Err: err}
	}

	content, err := c.complete(ctx, c.prompts.System.Scriptwriter, prompt)
	if err != nil {
		return "", &script.GenerationError{Stage: script.StageScript, Reason: "provider call", Err: err}
	}

	return ExtractNarration(content), nil
}

func (c *Client) generateCaptions(ctx context.Context, req reel.ScriptRequest, finalScript string) (map[string]reel.PlatformCaption, error) {
	prompt, err := c.prompts.RenderCaptions(prompts.CaptionParams{
		ProductName:     req.ProductName,
		Benefits:        strings.Join(req.Benefits, ", "),
		Script:          finalScript,
		Tone:            req.NormalizedTone(),
		PrimaryLanguage: req.PrimaryLanguage,
		Platforms:       strings.Join(req.Platforms, ", "),
	})
	if err != nil {
		return nil, &script.GenerationError{Stage: script.StageCaptions, Reason: "render prompt", Err: err}
	}

	content, err := c.completeJSON(ctx, c.prompts.System.Strategist, prompt)
	if err != nil {
		return nil, &script.GenerationError{Stage: script.StageCaptions, Reason: "provider call", Err: err}
	}

	var parsed map[string]reel.PlatformCaption
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &script.GenerationError{Stage: script.StageCaptions, Reason: "malformed completion", Err: err}
	}

	captions := make(map[string]reel.PlatformCaption, len(req.Platforms))
	for _, platform := range req.Platforms {
		entry, ok := lookupPlatform(parsed, platform)
		if !ok {
			return nil, &script.GenerationError{
				Stage:  script.StageCaptions,
				Reason: fmt.Sprintf("no caption entry for %s", platform),
			}
		}
		entry.Hashtags = cleanHashtags(entry.Hashtags)
		captions[platform] = entry
	}

	return captions, nil
}

// CaptionOptions proposes count alternative captions for an already
// generated script, for the caller to choose from at the upload gate.
func (c *Client) CaptionOptions(ctx context.Context, req reel.ScriptRequest, finalScript string, count int) ([]string, error) {
	prompt, err := c.prompts.RenderCaptionOptions(prompts.CaptionOptionsParams{
		ProductName:     req.ProductName,
		Benefits:        strings.Join(req.Benefits, ", "),
		Script:          finalScript,
		Tone:            req.NormalizedTone(),
		PrimaryLanguage: req.PrimaryLanguage,
		Count:           clampOptionCount(count),
	})
	if err != nil {
		return nil, &script.GenerationError{Stage: script.StageCaptions, Reason: "render prompt", Err: err}
	}

	content, err := c.completeJSON(ctx, c.prompts.System.Strategist, prompt)
	if err != nil {
		return nil, &script.GenerationError{Stage: script.StageCaptions, Reason: "provider call", Err: err}
	}

	options, err := parseStringArray(content)
	if err != nil {
		return nil, &script.GenerationError{Stage: script.StageCaptions, Reason: "malformed completion", Err: err}
	}

	return options, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.doComplete(ctx, systemPrompt, userPrompt, false)
}

func (c *Client) completeJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.doComplete(ctx, systemPrompt, userPrompt, true)
}

func (c *Client) doComplete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	req := groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: systemPrompt},
			{Role: groq.RoleUser, Content: userPrompt},
		},
	}

	if jsonMode {
		req.ResponseFormat = &groq.ChatResponseFormat{Type: "json_object"}
	}

	resp, err := c.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response")
	}

	slog.Debug("groq completion", "model", string(c.model), "json", jsonMode, "length", len(content))

	return content, nil
}

func lookupPlatform(parsed map[string]reel.PlatformCaption, platform string) (reel.PlatformCaption, bool) {
	if entry, ok := parsed[platform]; ok {
		return entry, true
	}
	for key, entry := range parsed {
		if strings.EqualFold(strings.TrimSpace(key), platform) {
			return entry, true
		}
	}
	return reel.PlatformCaption{}, false
}

func cleanHashtags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]bool)

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		tag = strings.TrimPrefix(tag, "#")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, tag)
	}

	return result
}

func parseStringArray(content string) ([]string, error) {
	var direct []string
	if err := json.Unmarshal([]byte(content), &direct); err == nil && len(direct) > 0 {
		return direct, nil
	}

	var wrapped map[string][]string
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	for _, items := range wrapped {
		if len(items) > 0 {
			return items, nil
		}
	}

	return nil, fmt.Errorf("no items found in response")
}

func clampOptionCount(count int) int {
	if count < 2 {
		return 2
	}
	if count > 6 {
		return 6
	}
	return count
}

func benefitsBlock(benefits []string) string {
	var clean []string
	for _, b := range benefits {
		if s := strings.TrimSpace(b); s != "" {
			clean = append(clean, "- "+s)
		}
	}
	if len(clean) == 0 {
		return "- N/A"
	}
	return strings.Join(clean, "\n")
}

func outlineBlock(o reel.Outline) string {
	return strings.Join([]string{
		"Hook: " + o.Hook,
		"Value points: " + o.ValuePoints,
		"Objection handling: " + o.ObjectionHandling,
		"Call to action: " + o.CallToAction,
	}, "\n")
}
