package groq

import (
	"encoding/json"
	"strings"
)

type scene struct {
	ID            int    `json:"id"`
	Duration      int    `json:"duration"`
	VisualPrompt  string `json:"visual_prompt"`
	NarrationText string `json:"narration_text"`
}

// ExtractNarration flattens a completion into plain voiceover text.
// Models sometimes answer with a JSON scene array even when asked for prose;
// in that case the narration lines are joined, one per scene. Markdown code
// fences around the payload are stripped first.
func ExtractNarration(content string) string {
	s := strings.TrimSpace(stripCodeFence(content))
	if !strings.HasPrefix(s, "[") {
		return s
	}

	var scenes []scene
	if err := json.Unmarshal([]byte(s), &scenes); err != nil {
		return s
	}

	var lines []string
	for _, sc := range scenes {
		if text := strings.TrimSpace(sc.NarrationText); text != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		return s
	}

	return strings.Join(lines, "\n")
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return s
}
