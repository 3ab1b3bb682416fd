package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reelbrief/api/internal/model"
	"github.com/reelbrief/api/internal/store"
)

// CostLedger is the append-only cost accounting for external operations.
// Roll-ups are full recomputations from source rows rather than incremental
// counters, so a missed increment can never leave a stale total behind.
type CostLedger struct {
	store *store.Store
}

func NewCostLedger(s *store.Store) *CostLedger {
	return &CostLedger{store: s}
}

// LogCost appends one ledger row. A failed append is returned loudly; the
// caller treats the operation being logged as failed rather than dropping
// cost data silently.
func (l *CostLedger) LogCost(ctx context.Context, entry *model.CostLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := l.store.AppendCost(ctx, entry); err != nil {
		return fmt.Errorf("failed to append cost log: %w", err)
	}
	return nil
}

// RollupVideoCost recomputes a video's total from its ledger rows and writes
// it to the video record. Callers must only invoke this after every writer
// for that video has finished.
func (l *CostLedger) RollupVideoCost(ctx context.Context, videoID string) (decimal.Decimal, error) {
	entries, err := l.store.ListVideoCosts(ctx, videoID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Cost)
	}

	video, err := l.store.GetVideo(ctx, videoID)
	if err != nil {
		return decimal.Zero, err
	}
	video.TotalCost = total
	video.UpdatedAt = time.Now()
	if err := l.store.SaveVideo(ctx, video); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

// RollupGenerationCost recomputes a generation's total as the sum of its
// videos' totals and writes it to the generation record. Run RollupVideoCost
// for every video first.
func (l *CostLedger) RollupGenerationCost(ctx context.Context, generationID string) (decimal.Decimal, error) {
	videos, err := l.store.ListGenerationVideos(ctx, generationID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, video := range videos {
		total = total.Add(video.TotalCost)
	}

	if err := l.store.SetGenerationTotalCost(ctx, generationID, total); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

// ListGenerationCosts returns the full audit view for one generation: its
// generation-scoped rows followed by every video's rows.
func (l *CostLedger) ListGenerationCosts(ctx context.Context, generationID string) ([]*model.CostLog, error) {
	entries, err := l.store.ListGenerationScopedCosts(ctx, generationID)
	if err != nil {
		return nil, err
	}

	videoIDs, err := l.store.ListGenerationVideoIDs(ctx, generationID)
	if err != nil {
		return nil, err
	}
	for _, videoID := range videoIDs {
		videoEntries, err := l.store.ListVideoCosts(ctx, videoID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, videoEntries...)
	}

	return entries, nil
}
