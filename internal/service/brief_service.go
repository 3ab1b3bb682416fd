package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reelbrief/api/internal/capability"
	"github.com/reelbrief/api/internal/model"
	"github.com/reelbrief/api/internal/store"
)

// BriefService creates briefs and runs the parser collaborator over them
// exactly once.
type BriefService struct {
	store  *store.Store
	parser capability.BriefParser
}

func NewBriefService(s *store.Store, parser capability.BriefParser) *BriefService {
	return &BriefService{
		store:  s,
		parser: parser,
	}
}

// Create persists the raw brief and parses it synchronously. A parser
// failure leaves the brief FAILED with the error captured; the brief row
// itself is always created.
func (s *BriefService) Create(ctx context.Context, rawInput string) (*model.Brief, error) {
	now := time.Now()
	brief := &model.Brief{
		ID:        uuid.New().String(),
		RawInput:  rawInput,
		Status:    model.BriefStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.SaveBrief(ctx, brief); err != nil {
		return nil, fmt.Errorf("failed to save brief: %w", err)
	}

	parsed, err := s.parser.Parse(ctx, rawInput)
	if err != nil {
		msg := err.Error()
		brief.Status = model.BriefStatusFailed
		brief.Error = &msg
	} else {
		brief.Status = model.BriefStatusParsed
		brief.ParsedData = parsed
	}
	brief.UpdatedAt = time.Now()

	if err := s.store.SaveBrief(ctx, brief); err != nil {
		return nil, fmt.Errorf("failed to save brief: %w", err)
	}

	return brief, nil
}

// Get returns one brief by id.
func (s *BriefService) Get(ctx context.Context, id string) (*model.Brief, error) {
	return s.store.GetBrief(ctx, id)
}
