package catalog

import (
	"context"
	"database/sql"
)

// Store is the repository interface for the lyrics catalog.
// GetTrackByMetadata expects inputs already passed through Normalize;
// the remaining metadata methods take raw strings and derive the
// normalized columns themselves. Methods returning a pointer return
// (nil, nil) when no row matches.
//
// The Tx variants exist for flows that must commit several writes
// atomically (publish, worker commits); they run against the supplied
// transaction and never commit or roll it back themselves.
type Store interface {
	// Track methods
	GetTrackByID(ctx context.Context, id int64) (*Track, error)
	GetTrackByMetadata(ctx context.Context, nameLower, artistLower, albumLower string, duration *float64) (*Track, error)
	GetTrackIDByMetadata(ctx context.Context, name, artistName, albumName string, duration float64) (int64, bool, error)
	GetTrackIDByMetadataTx(ctx context.Context, tx *sql.Tx, name, artistName, albumName string, duration float64) (int64, bool, error)
	SearchTracks(ctx context.Context, ftsQuery string, orderByRank bool, limit int) ([]*Track, error)
	AddTrack(ctx context.Context, name, artistName, albumName string, duration float64) (int64, error)
	AddTrackTx(ctx context.Context, tx *sql.Tx, name, artistName, albumName string, duration float64) (int64, error)

	// Lyrics methods
	AddLyrics(ctx context.Context, plain, synced *string, trackID int64, instrumental bool, source *string) (int64, error)
	AddLyricsTx(ctx context.Context, tx *sql.Tx, plain, synced *string, trackID int64, instrumental bool, source *string) (int64, error)
	FlagTrackLastLyrics(ctx context.Context, trackID int64, content string) error
	RecentPublishCount(ctx context.Context) (int64, error)

	// Missing track methods
	GetMissingTrackIDByMetadata(ctx context.Context, mt MissingTrack) (int64, bool, error)
	AddMissingTrack(ctx context.Context, mt MissingTrack) (int64, error)
	CleanOldMissingTracks(ctx context.Context) (int64, error)

	Begin(ctx context.Context) (*sql.Tx, error)
	Close() error
}
