package publish

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lrclib/lrclib/src/catalog"
	"github.com/lrclib/lrclib/src/features/metrics"
)

var (
	timestampPattern    = regexp.MustCompile(`^\[([^\]]*)\] *`)
	instrumentalPattern = regexp.MustCompile(`\[au:\s*instrumental\]`)
)

// Request is the body of POST /api/publish.
type Request struct {
	TrackName    string  `json:"trackName" validate:"required"`
	ArtistName   string  `json:"artistName" validate:"required"`
	AlbumName    string  `json:"albumName" validate:"required"`
	Duration     float64 `json:"duration" validate:"required,min=1,max=3600"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Service commits community-submitted lyrics and flags.
type Service struct {
	store          catalog.Store
	metricsService *metrics.Service
}

// NewService creates a new publish service.
func NewService(store catalog.Store, metricsService *metrics.Service) *Service {
	return &Service{store: store, metricsService: metricsService}
}

// Publish stores one submitted lyrics version, creating the track when
// it does not exist yet. Everything runs in a single transaction.
// Missing plain lyrics are derived from the synced ones; a submission
// carrying the instrumental marker is stored with null lyric fields.
func (s *Service) Publish(ctx context.Context, req *Request) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	name := strings.TrimSpace(req.TrackName)
	artist := strings.TrimSpace(req.ArtistName)
	album := strings.TrimSpace(req.AlbumName)

	trackID, found, err := s.store.GetTrackIDByMetadataTx(ctx, tx, name, artist, album, req.Duration)
	if err != nil {
		return fmt.Errorf("failed to find existing track: %w", err)
	}
	if !found {
		trackID, err = s.store.AddTrackTx(ctx, tx, name, artist, album, req.Duration)
		if err != nil {
			return fmt.Errorf("failed to add track: %w", err)
		}
	}

	plainLyrics := req.PlainLyrics
	syncedLyrics := req.SyncedLyrics
	if plainLyrics == "" && syncedLyrics != "" {
		plainLyrics = StripTimestamps(syncedLyrics)
	}

	source := catalog.SourceLrclib
	if instrumentalPattern.MatchString(syncedLyrics) {
		_, err = s.store.AddLyricsTx(ctx, tx, nil, nil, trackID, true, &source)
	} else {
		_, err = s.store.AddLyricsTx(ctx, tx, &plainLyrics, &syncedLyrics, trackID, false, &source)
	}
	if err != nil {
		return fmt.Errorf("failed to add lyrics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit publish: %w", err)
	}

	s.metricsService.RecordPublish()
	return nil
}

// Flag records a concern against the current lyrics of a track. A
// track without lyrics accepts the request but records nothing.
func (s *Service) Flag(ctx context.Context, trackID int64, content string) error {
	if err := s.store.FlagTrackLastLyrics(ctx, trackID, content); err != nil {
		return fmt.Errorf("failed to flag track %d: %w", trackID, err)
	}
	return nil
}

// StripTimestamps derives plain lyrics from synced ones by removing the
// leading [mm:ss.xx] timestamp of every line.
func StripTimestamps(syncedLyrics string) string {
	lines := strings.Split(syncedLyrics, "\n")
	for i, line := range lines {
		lines[i] = timestampPattern.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}
