package animator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/foliolab/foliage-platform/internal/inventory"
	"github.com/foliolab/foliage-platform/pkg/redis"
	"github.com/foliolab/foliage-platform/pkg/schema"
)

const (
	// TTL for all canopy keys; a restarting agent rewrites them
	canopyTTL = 24 * time.Hour

	// Max age for timeline events (24 hours in milliseconds)
	timelineMaxAge = 24 * 60 * 60 * 1000
)

// StateStore handles Redis persistence for clock state, dataset
// metadata, the resolution report and the control timeline.
type StateStore struct {
	redis  redis.Client
	logger *slog.Logger
}

// NewStateStore creates a new state store.
func NewStateStore(redisClient redis.Client, logger *slog.Logger) *StateStore {
	return &StateStore{
		redis:  redisClient,
		logger: logger,
	}
}

// SaveState stores the latest clock state as JSON.
func (s *StateStore) SaveState(ctx context.Context, state *schema.ClockState) error {
	jsonData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal clock state: %w", err)
	}

	if err := s.redis.Set(ctx, redis.StateKey(state.Dataset), jsonData, canopyTTL); err != nil {
		return fmt.Errorf("failed to store clock state: %w", err)
	}

	return nil
}

// LoadState returns the stored clock state for a dataset, or nil when
// nothing usable survives in Redis. A clean miss is silent; anything
// else gets logged, because starting fresh over a dead Redis is worth
// knowing about.
func (s *StateStore) LoadState(ctx context.Context, dataset string) *schema.ClockState {
	raw, err := s.redis.Get(ctx, redis.StateKey(dataset))
	if err != nil {
		if !errors.Is(err, redis.ErrNotFound) {
			s.logger.Warn("Clock state unavailable", "dataset", dataset, "error", err)
		}
		return nil
	}

	var state schema.ClockState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.logger.Warn("Discarding unreadable clock state", "dataset", dataset, "error", err)
		return nil
	}

	return &state
}

// LoadMeta returns the stored metadata hash for a dataset, empty
// when no earlier agent has written one.
func (s *StateStore) LoadMeta(ctx context.Context, dataset string) map[string]string {
	fields, err := s.redis.HGetAll(ctx, redis.MetaKey(dataset))
	if err != nil {
		s.logger.Warn("Dataset metadata unavailable", "dataset", dataset, "error", err)
		return nil
	}
	return fields
}

// SaveMeta stores dataset metadata in the meta hash.
func (s *StateStore) SaveMeta(ctx context.Context, ds *inventory.Dataset, session string, startDOY, endDOY int) error {
	key := redis.MetaKey(ds.Name)

	fields := map[string]string{
		"session":       session,
		"entity_count":  strconv.Itoa(len(ds.Entities)),
		"species_count": strconv.Itoa(len(ds.Species)),
		"start_doy":     strconv.Itoa(startDOY),
		"end_doy":       strconv.Itoa(endDOY),
		"centroid_lng":  strconv.FormatFloat(ds.CentroidLng, 'f', 6, 64),
		"centroid_lat":  strconv.FormatFloat(ds.CentroidLat, 'f', 6, 64),
		"updated_at":    strconv.FormatInt(time.Now().UnixMilli(), 10),
	}

	for field, value := range fields {
		if err := s.redis.HSet(ctx, key, field, value); err != nil {
			return fmt.Errorf("failed to store metadata field %s: %w", field, err)
		}
	}

	if err := s.redis.Expire(ctx, key, canopyTTL); err != nil {
		s.logger.Warn("Failed to set TTL on dataset metadata", "dataset", ds.Name, "error", err)
	}

	return nil
}

// SaveReport caches the resolution report as JSON.
func (s *StateStore) SaveReport(ctx context.Context, report *schema.Report) error {
	jsonData, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal resolution report: %w", err)
	}

	if err := s.redis.Set(ctx, redis.ReportKey(report.Dataset), jsonData, canopyTTL); err != nil {
		return fmt.Errorf("failed to store resolution report: %w", err)
	}

	return nil
}

// RecordControl appends one control event to the timeline sorted set
// and prunes entries past the retention window.
func (s *StateStore) RecordControl(ctx context.Context, dataset string, event *schema.TimelineEvent) error {
	key := redis.TimelineKey(dataset)

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline event: %w", err)
	}

	score := float64(event.At.UnixMilli())
	if err := s.redis.ZAdd(ctx, key, score, jsonData); err != nil {
		return fmt.Errorf("failed to add timeline event: %w", err)
	}

	maxAgeTimestamp := event.At.UnixMilli() - timelineMaxAge
	if err := s.redis.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(maxAgeTimestamp, 10)); err != nil {
		s.logger.Warn("Failed to prune control timeline", "dataset", dataset, "error", err)
	}

	if err := s.redis.Expire(ctx, key, canopyTTL); err != nil {
		s.logger.Warn("Failed to set TTL on control timeline", "dataset", dataset, "error", err)
	}

	count, err := s.redis.ZCard(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to get timeline size", "dataset", dataset, "error", err)
	} else {
		s.logger.Debug("Recorded control event",
			"dataset", dataset,
			"action", event.Action,
			"timeline_size", count)
	}

	return nil
}
