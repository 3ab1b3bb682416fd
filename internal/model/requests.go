package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BriefCreateRequest is the request for POST /api/briefs
type BriefCreateRequest struct {
	RawInput string `json:"rawInput" validate:"required,min=10,max=10000"`
}

// GenerationStartRequest is the request for POST /api/generations
type GenerationStartRequest struct {
	BriefID     string `json:"briefId" validate:"required,uuid4"`
	TargetCount int    `json:"targetCount" validate:"required,min=1,max=10"`
}

// GenerationStartResponse is returned with 202 once the pipeline is detached
type GenerationStartResponse struct {
	ID          string           `json:"id"`
	BriefID     string           `json:"briefId"`
	TargetCount int              `json:"targetCount"`
	Status      GenerationStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// GenerationStatusResponse is the polling view of a generation
type GenerationStatusResponse struct {
	ID                 string           `json:"id"`
	BriefID            string           `json:"briefId"`
	ParentGenerationID *string          `json:"parentGenerationId,omitempty"`
	TargetCount        int              `json:"targetCount"`
	Status             GenerationStatus `json:"status"`
	TotalCost          decimal.Decimal  `json:"totalCost"`
	VideoIDs           []string         `json:"videoIds"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// IterateRequest is the request for POST /api/videos/:videoId/iterate.
// VariationParams is accepted and persisted on the child generation but is
// not yet threaded through to the script provider.
type IterateRequest struct {
	TargetCount     int                    `json:"targetCount" validate:"required,min=1,max=10"`
	VariationParams map[string]interface{} `json:"variationParams,omitempty"`
}

// IterateResponse describes the child generation created by an iteration
type IterateResponse struct {
	ID                 string           `json:"id"`
	BriefID            string           `json:"briefId"`
	ParentGenerationID string           `json:"parentGenerationId"`
	TargetCount        int              `json:"targetCount"`
	Status             GenerationStatus `json:"status"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// QualityReviewRequest is the external review process's write path for a
// video's quality status.
type QualityReviewRequest struct {
	Status QualityStatus `json:"status" validate:"required,oneof=PASSED FAILED"`
}

// GenerationCostsResponse is the audit view of the ledger for one generation
type GenerationCostsResponse struct {
	GenerationID string          `json:"generationId"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	Entries      []CostLog       `json:"entries"`
}
