package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/reelbrief/api/internal/config"
)

var (
	oneThousand = decimal.NewFromInt(1000)
	oneGiB      = decimal.NewFromInt(1024 * 1024 * 1024)
)

// Pricer converts provider usage signals into decimal line-item costs. All
// arithmetic stays in decimal; float64 durations are converted once at the
// boundary.
type Pricer struct {
	scriptPromptPer1K     decimal.Decimal
	scriptCompletionPer1K decimal.Decimal
	avatarPerSecond       decimal.Decimal
	composePerSecond      decimal.Decimal
	storagePerGiB         decimal.Decimal
}

// NewPricer parses the configured rate strings. A malformed rate is a
// deployment error and fails startup.
func NewPricer(cfg *config.PricingConfig) (*Pricer, error) {
	rates := map[string]string{
		"script_prompt_per_1k":     cfg.ScriptPromptPer1K,
		"script_completion_per_1k": cfg.ScriptCompletionPer1K,
		"avatar_per_second":        cfg.AvatarPerSecond,
		"compose_per_second":       cfg.ComposePerSecond,
		"storage_per_gib":          cfg.StoragePerGiB,
	}
	parsed := make(map[string]decimal.Decimal, len(rates))
	for name, raw := range rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid pricing rate %s=%q: %w", name, raw, err)
		}
		parsed[name] = rate
	}

	return &Pricer{
		scriptPromptPer1K:     parsed["script_prompt_per_1k"],
		scriptCompletionPer1K: parsed["script_completion_per_1k"],
		avatarPerSecond:       parsed["avatar_per_second"],
		composePerSecond:      parsed["compose_per_second"],
		storagePerGiB:         parsed["storage_per_gib"],
	}, nil
}

// ScriptCost prices one batched chat completion by token usage.
func (p *Pricer) ScriptCost(promptTokens, completionTokens int64) decimal.Decimal {
	prompt := p.scriptPromptPer1K.Mul(decimal.NewFromInt(promptTokens)).Div(oneThousand)
	completion := p.scriptCompletionPer1K.Mul(decimal.NewFromInt(completionTokens)).Div(oneThousand)
	return prompt.Add(completion)
}

// AvatarCost prices avatar synthesis by clip duration.
func (p *Pricer) AvatarCost(seconds float64) decimal.Decimal {
	return p.avatarPerSecond.Mul(decimal.NewFromFloat(seconds))
}

// ComposeCost prices video composition by rendered duration.
func (p *Pricer) ComposeCost(seconds float64) decimal.Decimal {
	return p.composePerSecond.Mul(decimal.NewFromFloat(seconds))
}

// StorageCost prices an upload by byte size.
func (p *Pricer) StorageCost(bytes int64) decimal.Decimal {
	return p.storagePerGiB.Mul(decimal.NewFromInt(bytes)).Div(oneGiB)
}
