package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/reelbrief/api/internal/config"
)

func testPricer(t *testing.T) *Pricer {
	t.Helper()
	p, err := NewPricer(&config.PricingConfig{
		ScriptPromptPer1K:     "0.0005",
		ScriptCompletionPer1K: "0.0015",
		AvatarPerSecond:       "0.0035",
		ComposePerSecond:      "0.0020",
		StoragePerGiB:         "0.015",
	})
	if err != nil {
		t.Fatalf("NewPricer failed: %v", err)
	}
	return p
}

func TestNewPricer_RejectsMalformedRate(t *testing.T) {
	_, err := NewPricer(&config.PricingConfig{
		ScriptPromptPer1K:     "0.0005",
		ScriptCompletionPer1K: "not-a-number",
		AvatarPerSecond:       "0.0035",
		ComposePerSecond:      "0.0020",
		StoragePerGiB:         "0.015",
	})
	if err == nil {
		t.Fatal("expected an error for a malformed rate")
	}
}

func TestScriptCost(t *testing.T) {
	p := testPricer(t)

	// 2000 prompt tokens at 0.0005/1k + 1000 completion tokens at 0.0015/1k
	got := p.ScriptCost(2000, 1000)
	want := decimal.RequireFromString("0.0025")
	if !got.Equal(want) {
		t.Errorf("ScriptCost = %s, want %s", got, want)
	}

	if !p.ScriptCost(0, 0).IsZero() {
		t.Error("zero usage should cost zero")
	}
}

func TestDurationCosts(t *testing.T) {
	p := testPricer(t)

	if got, want := p.AvatarCost(20), decimal.RequireFromString("0.07"); !got.Equal(want) {
		t.Errorf("AvatarCost(20) = %s, want %s", got, want)
	}
	if got, want := p.ComposeCost(30.5), decimal.RequireFromString("0.061"); !got.Equal(want) {
		t.Errorf("ComposeCost(30.5) = %s, want %s", got, want)
	}
}

func TestStorageCost(t *testing.T) {
	p := testPricer(t)

	// Exactly one GiB costs the per-GiB rate.
	oneGiB := int64(1024 * 1024 * 1024)
	if got, want := p.StorageCost(oneGiB), decimal.RequireFromString("0.015"); !got.Equal(want) {
		t.Errorf("StorageCost(1GiB) = %s, want %s", got, want)
	}

	// Fractional sizes keep full decimal precision instead of rounding away.
	half := p.StorageCost(oneGiB / 2)
	if !half.Equal(decimal.RequireFromString("0.0075")) {
		t.Errorf("StorageCost(0.5GiB) = %s, want 0.0075", half)
	}
}
