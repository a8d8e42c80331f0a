package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lrclib/lrclib/src/catalog"
	"github.com/lrclib/lrclib/src/features/hosting"
	"github.com/lrclib/lrclib/src/infra/cache"
)

const (
	// staleAfter is the age past which a cached result is still served
	// but refreshed in the background.
	staleAfter = 20 * time.Hour

	resultLimit = 20
)

// CachedResult is the serialized form a search response is cached in.
type CachedResult struct {
	Tracks    []hosting.TrackResponse `json:"tracks"`
	CreatedAt time.Time               `json:"createdAt"`
}

// Service runs full-text searches with a stale-while-revalidate cache.
type Service struct {
	store catalog.Store
	cache *cache.Cache
}

// NewService creates a new search service.
func NewService(store catalog.Store, searchCache *cache.Cache) *Service {
	return &Service{store: store, cache: searchCache}
}

// Search returns up to 20 tracks matching the raw parameters. Cache
// hits are served immediately; hits past the staleness threshold also
// spawn a background recomputation that overwrites the entry.
func (s *Service) Search(ctx context.Context, q, trackName, artistName, albumName string) ([]hosting.TrackResponse, error) {
	qLower := catalog.Normalize(q)
	nameLower := catalog.Normalize(trackName)
	artistLower := catalog.Normalize(artistName)
	albumLower := catalog.Normalize(albumName)

	cacheKey := fmt.Sprintf("%s:%s:%s:%s", qLower, nameLower, artistLower, albumLower)

	if raw, ok := s.cache.Get(cacheKey); ok {
		var cached CachedResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			if time.Since(cached.CreatedAt) >= staleAfter {
				go func() {
					if _, err := s.fetchAndCache(context.Background(), cacheKey, qLower, nameLower, artistLower, albumLower); err != nil {
						slog.Error("Failed to refresh search cache entry", "key", cacheKey, "error", err)
					}
				}()
			}
			return cached.Tracks, nil
		}
	}

	return s.fetchAndCache(ctx, cacheKey, qLower, nameLower, artistLower, albumLower)
}

func (s *Service) fetchAndCache(ctx context.Context, cacheKey, q, trackName, artistName, albumName string) ([]hosting.TrackResponse, error) {
	response := []hosting.TrackResponse{}

	ftsQuery, orderByRank, ok := BuildQuery(q, trackName, artistName, albumName)
	if ok {
		slog.Debug("FTS query", "query", ftsQuery)
		tracks, err := s.store.SearchTracks(ctx, ftsQuery, orderByRank, resultLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to search tracks: %w", err)
		}
		for _, track := range tracks {
			response = append(response, hosting.NewTrackResponse(track))
		}
	}

	payload, err := json.Marshal(CachedResult{Tracks: response, CreatedAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize search result: %w", err)
	}
	s.cache.Set(cacheKey, string(payload))

	return response, nil
}
