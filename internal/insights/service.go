package insights

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"tajirpos/internal/cache"
	"tajirpos/internal/report"
)

// ErrSuperseded marks an analysis overtaken by a newer request. Only the
// latest request's outcome is delivered; stale replies are discarded.
var ErrSuperseded = errors.New("analysis superseded by a newer request")

// Service runs advisor analyses with caching and a latest-wins guard. It
// never surfaces advisor failures as errors; callers always get displayable
// text, falling back to the canned messages.
type Service struct {
	advisor  Advisor
	cache    cache.InsightsCache
	cacheTTL time.Duration

	mu         sync.Mutex
	generation uint64
}

func NewService(advisor Advisor, cacheStore cache.InsightsCache, cacheTTL time.Duration) *Service {
	if cacheStore == nil {
		cacheStore = cache.NoopInsightsCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Service{
		advisor:  advisor,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
	}
}

// Analyze produces the advisor's report for the given snapshot. A nil
// advisor (no API key configured) yields the missing-key message. When a
// newer Analyze call starts before this one finishes, the older call
// returns ErrSuperseded and its result is dropped.
func (s *Service) Analyze(ctx context.Context, stats report.Stats) (string, error) {
	if s.advisor == nil {
		return FallbackMissingKey, nil
	}

	key := statsDigest(stats)
	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Printf("[insights] cache get failed: %v", err)
	}

	s.mu.Lock()
	s.generation++
	myGen := s.generation
	s.mu.Unlock()

	text, err := s.advisor.Summarize(ctx, stats)

	s.mu.Lock()
	stale := myGen != s.generation
	s.mu.Unlock()
	if stale {
		return "", ErrSuperseded
	}

	if err != nil {
		if errors.Is(err, ErrEmptyReply) {
			return FallbackEmpty, nil
		}
		log.Printf("[insights] advisor failed: %v", err)
		return FallbackFailure, nil
	}

	if cacheErr := s.cache.Set(ctx, key, text, s.cacheTTL); cacheErr != nil {
		log.Printf("[insights] cache set failed: %v", cacheErr)
	}
	return text, nil
}

func statsDigest(stats report.Stats) string {
	payload, err := json.Marshal(stats)
	if err != nil {
		return "insights:unkeyed"
	}
	sum := sha1.Sum(payload)
	return "insights:" + hex.EncodeToString(sum[:])
}
