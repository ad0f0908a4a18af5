package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/storage"
)

const statsKey = "focusonly_stats"

// StatsStore keeps the monotonically increasing usage counters.
// The mutex serializes read-modify-write within this process.
type StatsStore struct {
	kv storage.Store
	mu sync.Mutex
}

// NewStatsStore creates a stats store on top of kv
func NewStatsStore(kv storage.Store) *StatsStore {
	return &StatsStore{kv: kv}
}

// Get returns the current counters (zero when never written)
func (s *StatsStore) Get(ctx context.Context) (model.Stats, error) {
	var stats model.Stats

	data, found, err := s.kv.Get(ctx, statsKey)
	if err != nil {
		return stats, fmt.Errorf("read stats: %w", err)
	}
	if !found {
		return stats, nil
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return model.Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}

// RecordAnalysis counts one analyzed page, one API call and its estimated tokens
func (s *StatsStore) RecordAnalysis(ctx context.Context, tokens int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.Get(ctx)
	if err != nil {
		return err
	}
	stats.PagesAnalyzed++
	stats.APICalls++
	stats.TokensEstimated += tokens

	return s.write(ctx, stats)
}

// Reset zeroes every counter
func (s *StatsStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, model.Stats{})
}

func (s *StatsStore) write(ctx context.Context, stats model.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := s.kv.Set(ctx, statsKey, data); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	return nil
}
