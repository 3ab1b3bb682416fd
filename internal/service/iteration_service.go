package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/reelbrief/api/internal/model"
	"github.com/reelbrief/api/internal/store"
)

// Iteration validation errors
var (
	ErrInvalidTargetCount = errors.New("targetCount must be between 1 and 10")
	ErrVideoNotApproved   = errors.New("source video has not passed quality review")
)

// IterationService spawns a child generation from an approved video,
// preserving lineage back to the original brief, then hands off to the same
// pipeline as a primary generation.
type IterationService struct {
	store       *store.Store
	asynqClient *asynq.Client
}

func NewIterationService(s *store.Store, asynqClient *asynq.Client) *IterationService {
	return &IterationService{
		store:       s,
		asynqClient: asynqClient,
	}
}

// Iterate validates the source video and creates the child generation.
// No row is created unless every check passes. variationParams is persisted
// on the child for audit but is not threaded through to the script provider.
func (s *IterationService) Iterate(ctx context.Context, sourceVideoID string, targetCount int, variationParams map[string]interface{}) (*model.Generation, error) {
	if targetCount < 1 || targetCount > 10 {
		return nil, ErrInvalidTargetCount
	}

	video, err := s.store.GetVideo(ctx, sourceVideoID)
	if err != nil {
		return nil, err
	}
	if video.QualityStatus != model.QualityStatusPassed {
		return nil, ErrVideoNotApproved
	}

	sourceGen, err := s.store.GetGeneration(ctx, video.GenerationID)
	if err != nil {
		return nil, err
	}

	brief, err := s.store.GetBrief(ctx, sourceGen.BriefID)
	if err != nil {
		return nil, err
	}
	if brief.Status != model.BriefStatusParsed || brief.ParsedData == nil {
		return nil, ErrBriefNotParsed
	}

	parentID := video.GenerationID
	gen := newGeneration(sourceGen.BriefID, &parentID, targetCount, variationParams)
	if err := s.store.SaveGeneration(ctx, gen); err != nil {
		return nil, fmt.Errorf("failed to save generation: %w", err)
	}

	if err := enqueuePipeline(s.asynqClient, gen.ID); err != nil {
		return nil, fmt.Errorf("failed to enqueue pipeline: %w", err)
	}

	return gen, nil
}
