package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Generation is one batch request to produce TargetCount videos from a brief.
// ParentGenerationID is set only for iterations and points at the generation
// that owns the approved source video.
type Generation struct {
	ID                 string                 `json:"id"`
	BriefID            string                 `json:"briefId"`
	ParentGenerationID *string                `json:"parentGenerationId,omitempty"`
	TargetCount        int                    `json:"targetCount"`
	Status             GenerationStatus       `json:"status"`
	TotalCost          decimal.Decimal        `json:"totalCost"`
	VariationParams    map[string]interface{} `json:"variationParams,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

// Video is one concrete output artifact of a generation. Exactly one video
// exists per script variant, created before its processing starts.
type Video struct {
	ID               string           `json:"id"`
	GenerationID     string           `json:"generationId"`
	Status           VideoStatus      `json:"status"`
	QualityStatus    QualityStatus    `json:"qualityStatus"`
	ScriptProvider   string           `json:"scriptProvider"`
	AvatarProvider   string           `json:"avatarProvider"`
	GenerationParams GenerationParams `json:"generationParams"`
	VideoURL         *string          `json:"videoUrl,omitempty"`
	TotalCost        decimal.Decimal  `json:"totalCost"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// GenerationParams is the per-video snapshot of what was generated: the
// chosen script text and, when processing failed, the captured error message.
type GenerationParams struct {
	Script string `json:"script"`
	Error  string `json:"error,omitempty"`
}
