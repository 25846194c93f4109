// Package cache keeps scene summaries of stored archives in memory.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/adventure-scaler/scaler/internal/models"
)

const summaryTTL = 30 * time.Minute

// SummaryCache maps stored file IDs to the scenes found in them.
type SummaryCache struct {
	c *ristretto.Cache[string, []models.SceneSummary]
}

// NewSummaryCache creates a cache holding roughly maxScenes scene summaries.
func NewSummaryCache(maxScenes int64) (*SummaryCache, error) {
	if maxScenes <= 0 {
		maxScenes = 1000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []models.SceneSummary]{
		NumCounters:        maxScenes * 10,
		MaxCost:            maxScenes,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating summary cache: %w", err)
	}
	return &SummaryCache{c: c}, nil
}

// Get returns the cached summaries for a file.
func (s *SummaryCache) Get(fileID string) ([]models.SceneSummary, bool) {
	return s.c.Get(fileID)
}

// Set stores summaries for a file. Each scene costs one unit.
func (s *SummaryCache) Set(fileID string, scenes []models.SceneSummary) {
	cost := int64(len(scenes))
	if cost == 0 {
		cost = 1
	}
	s.c.SetWithTTL(fileID, scenes, cost, summaryTTL)
	s.c.Wait()
}

// Delete drops a file's entry.
func (s *SummaryCache) Delete(fileID string) {
	s.c.Del(fileID)
}

// Close stops the cache's background goroutines.
func (s *SummaryCache) Close() {
	s.c.Close()
}
