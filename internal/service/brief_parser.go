package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reelbrief/api/internal/client"
	"github.com/reelbrief/api/internal/model"
)

// BriefParserLLM implements capability.BriefParser with a chat completion.
// The pipeline itself never calls this; it runs once when a brief is
// created and only the stored result is read afterwards.
type BriefParserLLM struct {
	openaiClient *client.OpenAIClient
}

func NewBriefParserLLM(openaiClient *client.OpenAIClient) *BriefParserLLM {
	return &BriefParserLLM{openaiClient: openaiClient}
}

// Parse extracts the structured brief from raw marketing text.
func (p *BriefParserLLM) Parse(ctx context.Context, rawInput string) (*model.ParsedBrief, error) {
	if p.openaiClient == nil || !p.openaiClient.IsConfigured() {
		return p.parseMock(rawInput), nil
	}

	systemPrompt := `You extract structured briefs from raw marketing text for UGC video ad production.
Always output your response as valid JSON in the exact format requested.
Do not include any text outside the JSON structure.`

	userPrompt := fmt.Sprintf(`Extract from the following brief:
- hook: the single strongest opening line
- persona: who should deliver it (age, vibe, setting)
- emotion: one dominant emotional tone
- bRollTags: 3-6 short search tags for background footage
- testimonialPoints: the concrete claims or benefits to cover

Brief:
%s

Output as JSON: {"hook": "...", "persona": "...", "emotion": "...", "bRollTags": ["..."], "testimonialPoints": ["..."]}`, rawInput)

	content, _, err := p.openaiClient.ChatCompletion(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("AI brief parsing failed: %w", err)
	}

	var parsed model.ParsedBrief
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if parsed.Hook == "" {
		return nil, fmt.Errorf("brief parsing produced no hook")
	}

	return &parsed, nil
}

func (p *BriefParserLLM) parseMock(rawInput string) *model.ParsedBrief {
	hook := rawInput
	if len(hook) > 80 {
		hook = hook[:80]
	}
	return &model.ParsedBrief{
		Hook:              hook,
		Persona:           "casual creator in their late 20s, filming at home",
		Emotion:           "enthusiastic",
		BRollTags:         []string{"lifestyle", "product close-up", "morning routine"},
		TestimonialPoints: []string{"saves time every day", "easy to get started"},
	}
}
