package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lrclib/lrclib/src/catalog"
	"github.com/lrclib/lrclib/src/infra/cache"
)

// Service answers lyric lookups and records the misses worth chasing.
type Service struct {
	store    catalog.Store
	getCache *cache.Cache
	queue    catalog.MissingQueue
}

// NewService creates a new lookup service. The cache deduplicates
// missing-track handling across repeated identical requests.
func NewService(store catalog.Store, getCache *cache.Cache, queue catalog.MissingQueue) *Service {
	return &Service{store: store, getCache: getCache, queue: queue}
}

// GetByID returns the track with its current lyrics, or nil.
func (s *Service) GetByID(ctx context.Context, id int64) (*catalog.Track, error) {
	return s.store.GetTrackByID(ctx, id)
}

// GetByMetadata looks a track up by its metadata. The first attempt
// uses every provided field; when the album was provided and missed,
// a second attempt drops it. A final miss fires missing-track handling
// in the background and returns nil.
func (s *Service) GetByMetadata(ctx context.Context, trackName, artistName, albumName string, duration *float64) (*catalog.Track, error) {
	nameLower := catalog.Normalize(trackName)
	artistLower := catalog.Normalize(artistName)
	albumLower := catalog.Normalize(albumName)

	if nameLower == "" || artistLower == "" {
		return nil, nil
	}

	track, err := s.store.GetTrackByMetadata(ctx, nameLower, artistLower, albumLower, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to get track by metadata: %w", err)
	}
	if track != nil {
		return track, nil
	}

	if albumLower != "" {
		track, err = s.store.GetTrackByMetadata(ctx, nameLower, artistLower, "", duration)
		if err != nil {
			return nil, fmt.Errorf("failed to get track by metadata without album: %w", err)
		}
		if track != nil {
			return track, nil
		}
	}

	// Fire and forget: the response does not wait for this and must not
	// cancel it when the handler returns.
	go s.HandleMissingTrack(context.Background(), trackName, artistName, albumName, duration)

	return nil, nil
}

// HandleMissingTrack records a lookup miss so a worker can source its
// lyrics later. It needs the album and duration to identify a recording
// precisely enough; requests without them are ignored. The get-cache
// entry suppresses duplicate handling until it expires.
func (s *Service) HandleMissingTrack(ctx context.Context, trackName, artistName, albumName string, duration *float64) {
	if strings.TrimSpace(albumName) == "" || duration == nil {
		return
	}

	nameLower := catalog.Normalize(trackName)
	artistLower := catalog.Normalize(artistName)
	albumLower := catalog.Normalize(albumName)
	if nameLower == "" || artistLower == "" || albumLower == "" {
		return
	}

	cacheKey := fmt.Sprintf("missing_track:%s:%s:%s:%v", nameLower, artistLower, albumLower, *duration)
	if _, ok := s.getCache.Get(cacheKey); ok {
		return
	}
	s.getCache.Set(cacheKey, "1")

	mt := catalog.MissingTrack{
		Name:       strings.TrimSpace(trackName),
		ArtistName: strings.TrimSpace(artistName),
		AlbumName:  strings.TrimSpace(albumName),
		Duration:   *duration,
	}

	log := slog.With(
		"track_name", mt.Name,
		"artist_name", mt.ArtistName,
		"album_name", mt.AlbumName,
		"duration", mt.Duration,
	)

	_, exists, err := s.store.GetMissingTrackIDByMetadata(ctx, mt)
	if err != nil {
		log.Error("Failed to check for existing missing track", "error", err)
		return
	}
	if exists {
		return
	}

	if _, err := s.store.AddMissingTrack(ctx, mt); err != nil {
		log.Error("Failed to record missing track", "error", err)
		return
	}

	if s.queue.TryPush(mt) {
		log.Debug("Sent missing track to queue")
	} else {
		log.Debug("Failed to push to queue")
	}
}
