package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reelbrief/api/internal/capability"
	"github.com/reelbrief/api/internal/client"
	"github.com/reelbrief/api/internal/model"
)

// ScriptWriter implements capability.ScriptProvider on top of the chat
// completion client. One call produces every variant of the batch, so the
// pipeline logs a single generation-scoped cost row for it.
type ScriptWriter struct {
	openaiClient *client.OpenAIClient
}

func NewScriptWriter(openaiClient *client.OpenAIClient) *ScriptWriter {
	return &ScriptWriter{openaiClient: openaiClient}
}

func (s *ScriptWriter) Name() string {
	return "openai"
}

// Generate produces count independent UGC ad script variants from the
// parsed brief, plus the call's token usage.
func (s *ScriptWriter) Generate(ctx context.Context, brief *model.ParsedBrief, count int) (*capability.ScriptBatch, error) {
	// Use mock response if client is not configured
	if s.openaiClient == nil || !s.openaiClient.IsConfigured() {
		return s.generateMock(brief, count), nil
	}

	systemPrompt := s.buildSystemPrompt()
	userPrompt := s.buildGeneratePrompt(brief, count)

	content, usage, err := s.openaiClient.ChatCompletion(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("AI script generation failed: %w", err)
	}

	variants, err := s.parseGenerateResponse(content, count)
	if err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return &capability.ScriptBatch{
		Variants:         variants,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
	}, nil
}

func (s *ScriptWriter) buildSystemPrompt() string {
	return `You are a direct-response copywriter specializing in short-form UGC video ads.
You write spoken-word scripts that sound like a real person talking to camera, never like ad copy.
Always output your response as valid JSON in the exact format requested.
Do not include any text outside the JSON structure.`
}

func (s *ScriptWriter) buildGeneratePrompt(brief *model.ParsedBrief, count int) string {
	points := strings.Join(brief.TestimonialPoints, "; ")

	return fmt.Sprintf(`Write %d different 30-45 second spoken video ad scripts.
Hook to open with: %s
Speaker persona: %s
Emotional tone: %s
Testimonial points to cover: %s

Each script must open with the hook (reworded naturally), weave in the testimonial points,
and close with a call to action. Scripts must differ meaningfully from each other in angle
and structure, not just wording.

Output as JSON: {"scripts": ["script one text", "script two text"]}`,
		count, brief.Hook, brief.Persona, brief.Emotion, points)
}

func (s *ScriptWriter) parseGenerateResponse(content string, count int) ([]string, error) {
	jsonStr := extractJSON(content)

	var parsed struct {
		Scripts []string `json:"scripts"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON in response: %w", err)
	}

	if len(parsed.Scripts) == 0 {
		return nil, fmt.Errorf("no scripts in response")
	}
	// Models occasionally over-deliver; never under-deliver silently.
	if len(parsed.Scripts) > count {
		parsed.Scripts = parsed.Scripts[:count]
	}
	if len(parsed.Scripts) < count {
		return nil, fmt.Errorf("expected %d scripts, got %d", count, len(parsed.Scripts))
	}

	return parsed.Scripts, nil
}

func (s *ScriptWriter) generateMock(brief *model.ParsedBrief, count int) *capability.ScriptBatch {
	variants := make([]string, 0, count)
	for i := 0; i < count; i++ {
		points := strings.Join(brief.TestimonialPoints, ". ")
		variants = append(variants, fmt.Sprintf(
			"%s Honestly, I was skeptical at first, but here is take %d. %s. Try it yourself, link below.",
			brief.Hook, i+1, points))
	}
	return &capability.ScriptBatch{
		Variants:         variants,
		PromptTokens:     220,
		CompletionTokens: int64(180 * count),
	}
}

// extractJSON strips markdown code fences models sometimes wrap around JSON.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
