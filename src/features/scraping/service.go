package scraping

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/lrclib/lrclib/src/catalog"
	"github.com/lrclib/lrclib/src/features/metrics"
)

// ScrapedLyrics is what a provider returns for a missing track.
type ScrapedLyrics struct {
	PlainLyrics  *string
	SyncedLyrics *string
	Instrumental bool
}

// Provider retrieves lyrics for tracks absent from the catalog.
// Returning (nil, nil) means the provider looked and found nothing.
type Provider interface {
	RetrieveLyrics(ctx context.Context, name, artistName, albumName string, duration float64) (*ScrapedLyrics, error)
}

// Service drains the missing track queue with a pool of workers and
// persists whatever the provider finds.
type Service struct {
	store          catalog.Store
	queue          catalog.MissingQueue
	provider       Provider
	metricsService *metrics.Service
}

// NewService creates a new scraping service.
func NewService(store catalog.Store, queue catalog.MissingQueue, provider Provider, metricsService *metrics.Service) *Service {
	return &Service{store: store, queue: queue, provider: provider, metricsService: metricsService}
}

// Start spawns count workers that run until ctx is cancelled, plus a
// daily janitor for stale missing tracks. With a count of zero no
// workers run and the queue grows up to its capacity.
func (s *Service) Start(ctx context.Context, count int) {
	slog.Info("Starting lyrics workers", "count", count)
	for i := 0; i < count; i++ {
		go s.work(ctx)
	}
	go s.cleanLoop(ctx)
}

func (s *Service) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.processNext(ctx)
	}
}

// processNext pops and handles a single queue entry, sleeping briefly
// when the queue is empty. A panic while handling one track must not
// take down the worker.
func (s *Service) processNext(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered from panic in lyrics worker", "panic", r)
		}
	}()

	mt, ok := s.queue.TryPop()
	if !ok {
		time.Sleep(50 * time.Millisecond)
		return
	}

	log := slog.With(
		"track_name", mt.Name,
		"artist_name", mt.ArtistName,
		"album_name", mt.AlbumName,
		"duration", mt.Duration,
	)

	data, err := s.provider.RetrieveLyrics(ctx, mt.Name, mt.ArtistName, mt.AlbumName, mt.Duration)
	if err != nil {
		log.Error("Error while finding lyrics", "error", err)
		s.metricsService.RecordScrapeResult("error")
		s.queue.TryPush(mt)
		return
	}
	if data == nil {
		log.Info("No lyrics found")
		s.metricsService.RecordScrapeResult("not_found")
		return
	}
	s.metricsService.RecordScrapeResult("found")

	tx, err := s.store.Begin(ctx)
	if err != nil {
		log.Error("Failed to open store transaction", "error", err)
		s.queue.TryPush(mt)
		return
	}
	defer tx.Rollback()

	if err := s.saveFound(ctx, tx, mt, data); err != nil {
		log.Error("Failed to save lyrics", "error", err)
		return
	}
	log.Info("Lyrics added")
}

func (s *Service) saveFound(ctx context.Context, tx *sql.Tx, mt catalog.MissingTrack, data *ScrapedLyrics) error {
	trackID, err := s.store.AddTrackTx(ctx, tx,
		strings.TrimSpace(mt.Name),
		strings.TrimSpace(mt.ArtistName),
		strings.TrimSpace(mt.AlbumName),
		mt.Duration)
	if err != nil {
		return err
	}
	if _, err := s.store.AddLyricsTx(ctx, tx, data.PlainLyrics, data.SyncedLyrics, trackID, data.Instrumental, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// cleanLoop prunes missing tracks older than two weeks, once shortly
// after startup and then once a day.
func (s *Service) cleanLoop(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Minute):
		s.cleanOnce(ctx)
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanOnce(ctx)
		}
	}
}

func (s *Service) cleanOnce(ctx context.Context) {
	deleted, err := s.store.CleanOldMissingTracks(ctx)
	if err != nil {
		slog.Error("Failed to clean old missing tracks", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Cleaned old missing tracks", "deleted", deleted)
	}
}
