// Package worker runs the generation pipeline: one asynq task per
// generation, fanning out per-video work against the injected provider
// capabilities.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/reelbrief/api/internal/capability"
	"github.com/reelbrief/api/internal/model"
	"github.com/reelbrief/api/internal/service"
	"github.com/reelbrief/api/internal/store"
)

// PipelineWorker drives a generation from PENDING to a terminal status.
// Providers are injected as capabilities; the worker never resolves one
// itself.
type PipelineWorker struct {
	store         *store.Store
	ledger        *service.CostLedger
	pricer        *service.Pricer
	caps          *capability.Capabilities
	maxConcurrent int
}

func NewPipelineWorker(s *store.Store, ledger *service.CostLedger, pricer *service.Pricer, caps *capability.Capabilities, maxConcurrent int) *PipelineWorker {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &PipelineWorker{
		store:         s,
		ledger:        ledger,
		pricer:        pricer,
		caps:          caps,
		maxConcurrent: maxConcurrent,
	}
}

// ProcessTask is the asynq entry point. Errors returned here land in the
// task queue's error log, which is the only place a detached pipeline's
// failure is surfaced.
func (w *PipelineWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.PipelineTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid pipeline payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.Run(ctx, payload.GenerationID); err != nil {
		log.Printf("Pipeline for generation %s failed: %v", payload.GenerationID, err)
		return err
	}
	return nil
}

// Run executes the whole pipeline for one generation. The generation always
// leaves with a terminal status unless the store itself is unreachable.
func (w *PipelineWorker) Run(ctx context.Context, generationID string) error {
	gen, err := w.store.GetGeneration(ctx, generationID)
	if err != nil {
		return fmt.Errorf("failed to load generation: %w", err)
	}

	// Duplicate-start guard: exactly one pipeline drives a generation.
	claimed, err := w.store.ClaimPipeline(ctx, generationID)
	if err != nil {
		return fmt.Errorf("failed to claim pipeline: %w", err)
	}
	if !claimed {
		log.Printf("Pipeline for generation %s already claimed, skipping", generationID)
		return nil
	}

	if err := w.run(ctx, gen); err != nil {
		w.markFailed(ctx, generationID)
		return err
	}
	return nil
}

func (w *PipelineWorker) run(ctx context.Context, gen *model.Generation) error {
	brief, err := w.store.GetBrief(ctx, gen.BriefID)
	if err != nil {
		return fmt.Errorf("failed to load brief %s: %w", gen.BriefID, err)
	}
	// Fatal precondition: an unparsed brief aborts the whole batch before a
	// single video row exists.
	if brief.Status != model.BriefStatusParsed || brief.ParsedData == nil {
		return fmt.Errorf("brief %s has no parsed data (status %s)", brief.ID, brief.Status)
	}

	if err := w.setStatus(ctx, gen.ID, model.GenerationStatusQueued); err != nil {
		return err
	}
	if err := w.setStatus(ctx, gen.ID, model.GenerationStatusScriptGen); err != nil {
		return err
	}

	// One batched script call covers every variant; its cost is
	// generation-scoped (no video id).
	batch, err := w.caps.Script.Generate(ctx, brief.ParsedData, gen.TargetCount)
	if err != nil {
		return fmt.Errorf("script generation failed: %w", err)
	}
	if err := w.ledger.LogCost(ctx, &model.CostLog{
		GenerationID: gen.ID,
		ServiceType:  model.ServiceTypeScript,
		Provider:     w.caps.Script.Name(),
		Operation:    "generate_variants",
		InputUnits:   decimal.NewFromInt(batch.PromptTokens),
		OutputUnits:  decimal.NewFromInt(batch.CompletionTokens),
		UnitType:     model.UnitTypeTokens,
		Cost:         w.pricer.ScriptCost(batch.PromptTokens, batch.CompletionTokens),
	}); err != nil {
		return err
	}

	// Best-effort: an empty clip set never blocks the pipeline.
	clips := w.caps.BRoll.Fetch(ctx, brief.ParsedData.BRollTags)
	if len(clips) == 0 {
		log.Printf("Pipeline %s: no b-roll clips for tags %v", gen.ID, brief.ParsedData.BRollTags)
	}

	if err := w.setStatus(ctx, gen.ID, model.GenerationStatusAvatarGen); err != nil {
		return err
	}

	// Every video row exists before any per-video work starts, so a crash
	// mid-fan-out leaves diagnosable PENDING rows.
	videos := make([]*model.Video, 0, len(batch.Variants))
	for _, script := range batch.Variants {
		video := w.newVideo(gen.ID, script)
		if err := w.store.SaveVideo(ctx, video); err != nil {
			return fmt.Errorf("failed to save video: %w", err)
		}
		if err := w.store.AddGenerationVideo(ctx, gen.ID, video.ID); err != nil {
			return fmt.Errorf("failed to register video: %w", err)
		}
		videos = append(videos, video)
	}

	// Fan out. Per-video failures are recorded on the video row and never
	// escape to siblings, so the group callbacks always return nil.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.maxConcurrent)
	for _, video := range videos {
		video := video
		g.Go(func() error {
			w.processVideo(gctx, video, clips)
			return nil
		})
	}

	// Batch narrative markers only; per-video work does not gate on them.
	for _, status := range []model.GenerationStatus{
		model.GenerationStatusVideoGen,
		model.GenerationStatusCompositing,
		model.GenerationStatusUploading,
	} {
		if err := w.setStatus(ctx, gen.ID, status); err != nil {
			return err
		}
	}

	// Join: every video settles before any roll-up reads the ledger.
	_ = g.Wait()

	for _, video := range videos {
		if _, err := w.ledger.RollupVideoCost(ctx, video.ID); err != nil {
			return fmt.Errorf("failed to roll up video %s: %w", video.ID, err)
		}
	}
	if _, err := w.ledger.RollupGenerationCost(ctx, gen.ID); err != nil {
		return fmt.Errorf("failed to roll up generation: %w", err)
	}

	completed := 0
	for _, video := range videos {
		final, err := w.store.GetVideo(ctx, video.ID)
		if err != nil {
			return err
		}
		if final.Status == model.VideoStatusCompleted {
			completed++
		}
	}

	finalStatus := model.GenerationStatusFailed
	if completed > 0 {
		finalStatus = model.GenerationStatusCompleted
	}
	if err := w.setStatus(ctx, gen.ID, finalStatus); err != nil {
		return err
	}

	log.Printf("Pipeline %s finished: %d/%d videos completed", gen.ID, completed, len(videos))
	return nil
}

// processVideo runs one video's avatar → compose → upload sequence. It is
// fully isolated: any failure is written to the video row and swallowed.
func (w *PipelineWorker) processVideo(ctx context.Context, video *model.Video, clips []capability.Clip) {
	if err := w.setVideoStatus(ctx, video, model.VideoStatusProcessing); err != nil {
		w.failVideo(ctx, video, err)
		return
	}

	artifact, err := w.caps.Avatar.Generate(ctx, video.GenerationParams.Script)
	if err != nil {
		w.failVideo(ctx, video, err)
		return
	}
	if err := w.logVideoCost(ctx, video, model.ServiceTypeAvatar, w.caps.Avatar.Name(), "generate_avatar",
		decimal.Zero, decimal.NewFromFloat(artifact.DurationSeconds), model.UnitTypeSeconds, w.pricer.AvatarCost(artifact.DurationSeconds)); err != nil {
		w.failVideo(ctx, video, err)
		return
	}

	composition, err := w.caps.Composer.Compose(ctx, artifact, clips)
	if err != nil {
		w.failVideo(ctx, video, err)
		return
	}
	if err := w.logVideoCost(ctx, video, model.ServiceTypeCompose, w.caps.Composer.Name(), "compose_video",
		decimal.Zero, decimal.NewFromFloat(composition.DurationSeconds), model.UnitTypeSeconds, w.pricer.ComposeCost(composition.DurationSeconds)); err != nil {
		w.failVideo(ctx, video, err)
		return
	}

	key := fmt.Sprintf("videos/%s/%s.mp4", video.GenerationID, video.ID)
	url, err := w.caps.Storage.Upload(ctx, key, bytes.NewReader(composition.Buffer), composition.ContentType)
	if err != nil {
		w.failVideo(ctx, video, err)
		return
	}
	size := int64(len(composition.Buffer))
	if err := w.logVideoCost(ctx, video, model.ServiceTypeStorage, w.caps.Storage.Name(), "upload_video",
		decimal.NewFromInt(size), decimal.Zero, model.UnitTypeBytes, w.pricer.StorageCost(size)); err != nil {
		w.failVideo(ctx, video, err)
		return
	}

	video.Status = model.VideoStatusCompleted
	video.VideoURL = &url
	video.UpdatedAt = time.Now()
	if err := w.store.SaveVideo(ctx, video); err != nil {
		// The artifact is uploaded but the row is unreachable; nothing more
		// to record against it.
		log.Printf("Failed to mark video %s completed: %v", video.ID, err)
	}
}

func (w *PipelineWorker) newVideo(generationID, script string) *model.Video {
	now := time.Now()
	return &model.Video{
		ID:             uuid.New().String(),
		GenerationID:   generationID,
		Status:         model.VideoStatusPending,
		QualityStatus:  model.QualityStatusPending,
		ScriptProvider: w.caps.Script.Name(),
		AvatarProvider: w.caps.Avatar.Name(),
		GenerationParams: model.GenerationParams{
			Script: script,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (w *PipelineWorker) logVideoCost(ctx context.Context, video *model.Video, serviceType model.ServiceType, provider, operation string, inputUnits, outputUnits decimal.Decimal, unitType model.UnitType, cost decimal.Decimal) error {
	videoID := video.ID
	return w.ledger.LogCost(ctx, &model.CostLog{
		GenerationID: video.GenerationID,
		VideoID:      &videoID,
		ServiceType:  serviceType,
		Provider:     provider,
		Operation:    operation,
		InputUnits:   inputUnits,
		OutputUnits:  outputUnits,
		UnitType:     unitType,
		Cost:         cost,
	})
}

func (w *PipelineWorker) setStatus(ctx context.Context, generationID string, status model.GenerationStatus) error {
	if err := w.store.SetGenerationStatus(ctx, generationID, status); err != nil {
		return fmt.Errorf("failed to set generation status %s: %w", status, err)
	}
	return nil
}

func (w *PipelineWorker) setVideoStatus(ctx context.Context, video *model.Video, status model.VideoStatus) error {
	video.Status = status
	video.UpdatedAt = time.Now()
	return w.store.SaveVideo(ctx, video)
}

// failVideo records the error on the video row. No partial videoUrl is ever
// kept for a failed video.
func (w *PipelineWorker) failVideo(ctx context.Context, video *model.Video, cause error) {
	video.Status = model.VideoStatusFailed
	video.GenerationParams.Error = cause.Error()
	video.VideoURL = nil
	video.UpdatedAt = time.Now()
	if err := w.store.SaveVideo(ctx, video); err != nil {
		log.Printf("Failed to mark video %s failed: %v", video.ID, err)
	}
}

func (w *PipelineWorker) markFailed(ctx context.Context, generationID string) {
	if err := w.store.SetGenerationStatus(ctx, generationID, model.GenerationStatusFailed); err != nil {
		log.Printf("Failed to mark generation %s failed: %v", generationID, err)
	}
}
