package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/reelbrief/api/internal/model"
	"github.com/reelbrief/api/internal/store"
)

const TaskTypePipeline = "pipeline:process"

// ErrBriefNotParsed is returned when a generation is requested for a brief
// that has no parsed data.
var ErrBriefNotParsed = errors.New("brief not parsed")

// PipelineTaskPayload is the asynq payload for one pipeline run.
type PipelineTaskPayload struct {
	GenerationID string `json:"generationId"`
}

// GenerationService creates generation batches and detaches their pipelines.
// The caller gets the persisted row back immediately; pipeline failures are
// only observable by polling or via the task queue's error log.
type GenerationService struct {
	store       *store.Store
	ledger      *CostLedger
	asynqClient *asynq.Client
}

func NewGenerationService(s *store.Store, ledger *CostLedger, asynqClient *asynq.Client) *GenerationService {
	return &GenerationService{
		store:       s,
		ledger:      ledger,
		asynqClient: asynqClient,
	}
}

// Start creates a Generation for a parsed brief and enqueues its pipeline.
func (s *GenerationService) Start(ctx context.Context, briefID string, targetCount int) (*model.Generation, error) {
	brief, err := s.store.GetBrief(ctx, briefID)
	if err != nil {
		return nil, err
	}
	if brief.Status != model.BriefStatusParsed || brief.ParsedData == nil {
		return nil, ErrBriefNotParsed
	}

	gen := newGeneration(briefID, nil, targetCount, nil)
	if err := s.store.SaveGeneration(ctx, gen); err != nil {
		return nil, fmt.Errorf("failed to save generation: %w", err)
	}

	if err := enqueuePipeline(s.asynqClient, gen.ID); err != nil {
		return nil, fmt.Errorf("failed to enqueue pipeline: %w", err)
	}

	return gen, nil
}

// Get returns one generation by id.
func (s *GenerationService) Get(ctx context.Context, id string) (*model.Generation, error) {
	return s.store.GetGeneration(ctx, id)
}

// VideoIDs returns the generation's video ids in creation order.
func (s *GenerationService) VideoIDs(ctx context.Context, generationID string) ([]string, error) {
	return s.store.ListGenerationVideoIDs(ctx, generationID)
}

// Videos returns the generation's full video records in creation order.
func (s *GenerationService) Videos(ctx context.Context, generationID string) ([]*model.Video, error) {
	if _, err := s.store.GetGeneration(ctx, generationID); err != nil {
		return nil, err
	}
	return s.store.ListGenerationVideos(ctx, generationID)
}

// Costs returns the ledger audit view for one generation.
func (s *GenerationService) Costs(ctx context.Context, generationID string) (*model.GenerationCostsResponse, error) {
	gen, err := s.store.GetGeneration(ctx, generationID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListGenerationCosts(ctx, generationID)
	if err != nil {
		return nil, err
	}
	resp := &model.GenerationCostsResponse{
		GenerationID: generationID,
		TotalCost:    gen.TotalCost,
		Entries:      make([]model.CostLog, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, *entry)
	}
	return resp, nil
}

// GetVideo returns one video by id.
func (s *GenerationService) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	return s.store.GetVideo(ctx, id)
}

// SetQualityStatus is the write path for the external review process. The
// pipeline never touches qualityStatus.
func (s *GenerationService) SetQualityStatus(ctx context.Context, videoID string, status model.QualityStatus) (*model.Video, error) {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	video.QualityStatus = status
	video.UpdatedAt = time.Now()
	if err := s.store.SaveVideo(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func newGeneration(briefID string, parentID *string, targetCount int, variationParams map[string]interface{}) *model.Generation {
	now := time.Now()
	return &model.Generation{
		ID:                 uuid.New().String(),
		BriefID:            briefID,
		ParentGenerationID: parentID,
		TargetCount:        targetCount,
		Status:             model.GenerationStatusPending,
		TotalCost:          decimal.Zero,
		VariationParams:    variationParams,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// enqueuePipeline detaches the pipeline for a generation. MaxRetry is zero:
// retry is a provider-level concern, never the orchestrator's.
func enqueuePipeline(asynqClient *asynq.Client, generationID string) error {
	data, err := json.Marshal(PipelineTaskPayload{GenerationID: generationID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskTypePipeline, data)
	_, err = asynqClient.Enqueue(task,
		asynq.Queue("pipeline"),
		asynq.MaxRetry(0),
		asynq.Retention(24*time.Hour),
	)
	return err
}
