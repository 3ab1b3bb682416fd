package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostLog is one append-only ledger row for a single external operation.
// VideoID is nil for generation-scoped costs, e.g. the one batched script
// call that covers every variant of the generation.
type CostLog struct {
	ID           string          `json:"id"`
	GenerationID string          `json:"generationId"`
	VideoID      *string         `json:"videoId,omitempty"`
	ServiceType  ServiceType     `json:"serviceType"`
	Provider     string          `json:"provider"`
	Operation    string          `json:"operation"`
	InputUnits   decimal.Decimal `json:"inputUnits"`
	OutputUnits  decimal.Decimal `json:"outputUnits"`
	UnitType     UnitType        `json:"unitType"`
	Cost         decimal.Decimal `json:"cost"`
	CreatedAt    time.Time       `json:"createdAt"`
}
