package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/reelbrief/api/internal/model"
	"github.com/reelbrief/api/internal/store"
)

// newTestDeps spins up an in-process Redis and returns a store plus an asynq
// client bound to it.
func newTestDeps(t *testing.T) (*store.Store, *asynq.Client) {
	t.Helper()
	_, s, asynqClient := newTestDepsRedis(t)
	return s, asynqClient
}

// newTestDepsRedis additionally exposes the miniredis handle for tests that
// assert on raw keys.
func newTestDepsRedis(t *testing.T) (*miniredis.Miniredis, *store.Store, *asynq.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { asynqClient.Close() })

	return mr, store.New(redisClient), asynqClient
}

func seedParsedBrief(t *testing.T, s *store.Store, id string) *model.Brief {
	t.Helper()

	now := time.Now()
	brief := &model.Brief{
		ID:       id,
		RawInput: "Sell our standing desk to remote workers",
		ParsedData: &model.ParsedBrief{
			Hook:              "Your back will thank you",
			Persona:           "remote worker",
			Emotion:           "confidence",
			BRollTags:         []string{"home office"},
			TestimonialPoints: []string{"no more back pain"},
		},
		Status:    model.BriefStatusParsed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.SaveBrief(context.Background(), brief); err != nil {
		t.Fatalf("failed to seed brief: %v", err)
	}
	return brief
}

func seedVideo(t *testing.T, s *store.Store, id, generationID string, quality model.QualityStatus) *model.Video {
	t.Helper()

	now := time.Now()
	url := "https://cdn.fake.example/videos/" + generationID + "/" + id + ".mp4"
	video := &model.Video{
		ID:             id,
		GenerationID:   generationID,
		Status:         model.VideoStatusCompleted,
		QualityStatus:  quality,
		ScriptProvider: "fake-script",
		AvatarProvider: "fake-avatar",
		GenerationParams: model.GenerationParams{
			Script: "Hook line. Body line. CTA line.",
		},
		VideoURL:  &url,
		TotalCost: decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.SaveVideo(context.Background(), video); err != nil {
		t.Fatalf("failed to seed video: %v", err)
	}
	return video
}
