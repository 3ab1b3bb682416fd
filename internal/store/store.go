// Package store persists briefs, generations, videos and cost ledger rows
// in Redis as JSON values under typed keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/reelbrief/api/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// claimTTL bounds how long a pipeline claim key lives. A generation that has
// not finished within this window is stuck anyway and safe to re-drive.
const claimTTL = 24 * time.Hour

type Store struct {
	redis *redis.Client
}

func New(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

// Briefs

func (s *Store) SaveBrief(ctx context.Context, brief *model.Brief) error {
	return s.saveJSON(ctx, briefKey(brief.ID), brief)
}

func (s *Store) GetBrief(ctx context.Context, id string) (*model.Brief, error) {
	var brief model.Brief
	if err := s.getJSON(ctx, briefKey(id), &brief); err != nil {
		return nil, err
	}
	return &brief, nil
}

// Generations

func (s *Store) SaveGeneration(ctx context.Context, gen *model.Generation) error {
	return s.saveJSON(ctx, generationKey(gen.ID), gen)
}

func (s *Store) GetGeneration(ctx context.Context, id string) (*model.Generation, error) {
	var gen model.Generation
	if err := s.getJSON(ctx, generationKey(id), &gen); err != nil {
		return nil, err
	}
	return &gen, nil
}

// SetGenerationStatus advances the batch-progress label. Transitions are
// monotonic in practice because only one pipeline drives a generation (see
// ClaimPipeline).
func (s *Store) SetGenerationStatus(ctx context.Context, id string, status model.GenerationStatus) error {
	gen, err := s.GetGeneration(ctx, id)
	if err != nil {
		return err
	}
	gen.Status = status
	gen.UpdatedAt = time.Now()
	return s.SaveGeneration(ctx, gen)
}

func (s *Store) SetGenerationTotalCost(ctx context.Context, id string, total decimal.Decimal) error {
	gen, err := s.GetGeneration(ctx, id)
	if err != nil {
		return err
	}
	gen.TotalCost = total
	gen.UpdatedAt = time.Now()
	return s.SaveGeneration(ctx, gen)
}

// ClaimPipeline atomically claims the right to drive a generation's
// pipeline. The second concurrent start of the same generation gets false
// and must back off.
func (s *Store) ClaimPipeline(ctx context.Context, generationID string) (bool, error) {
	return s.redis.SetNX(ctx, claimKey(generationID), time.Now().Format(time.RFC3339), claimTTL).Result()
}

// Videos

func (s *Store) SaveVideo(ctx context.Context, video *model.Video) error {
	return s.saveJSON(ctx, videoKey(video.ID), video)
}

func (s *Store) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	if err := s.getJSON(ctx, videoKey(id), &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// AddGenerationVideo registers a video under its generation, preserving
// creation order.
func (s *Store) AddGenerationVideo(ctx context.Context, generationID, videoID string) error {
	return s.redis.RPush(ctx, generationVideosKey(generationID), videoID).Err()
}

func (s *Store) ListGenerationVideoIDs(ctx context.Context, generationID string) ([]string, error) {
	ids, err := s.redis.LRange(ctx, generationVideosKey(generationID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) ListGenerationVideos(ctx context.Context, generationID string) ([]*model.Video, error) {
	ids, err := s.ListGenerationVideoIDs(ctx, generationID)
	if err != nil {
		return nil, err
	}
	videos := make([]*model.Video, 0, len(ids))
	for _, id := range ids {
		video, err := s.GetVideo(ctx, id)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, nil
}

// Cost ledger — append-only lists, one per scope. Concurrent per-video
// writers are safe because each task owns a disjoint video id.

func (s *Store) AppendCost(ctx context.Context, entry *model.CostLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := generationCostsKey(entry.GenerationID)
	if entry.VideoID != nil {
		key = videoCostsKey(*entry.VideoID)
	}
	return s.redis.RPush(ctx, key, data).Err()
}

func (s *Store) ListVideoCosts(ctx context.Context, videoID string) ([]*model.CostLog, error) {
	return s.listCosts(ctx, videoCostsKey(videoID))
}

// ListGenerationScopedCosts returns only the rows logged with a nil video
// id, e.g. the batched script call.
func (s *Store) ListGenerationScopedCosts(ctx context.Context, generationID string) ([]*model.CostLog, error) {
	return s.listCosts(ctx, generationCostsKey(generationID))
}

func (s *Store) listCosts(ctx context.Context, key string) ([]*model.CostLog, error) {
	raw, err := s.redis.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]*model.CostLog, 0, len(raw))
	for _, item := range raw {
		var entry model.CostLog
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// Helpers

func (s *Store) saveJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, 0).Err()
}

func (s *Store) getJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func briefKey(id string) string             { return fmt.Sprintf("brief:%s", id) }
func generationKey(id string) string        { return fmt.Sprintf("generation:%s", id) }
func generationVideosKey(id string) string  { return fmt.Sprintf("generation:%s:videos", id) }
func videoKey(id string) string             { return fmt.Sprintf("video:%s", id) }
func videoCostsKey(id string) string        { return fmt.Sprintf("costs:video:%s", id) }
func generationCostsKey(id string) string   { return fmt.Sprintf("costs:generation:%s", id) }
func claimKey(generationID string) string   { return fmt.Sprintf("pipeline:claim:%s", generationID) }
