package catalog

import "time"

// Track represents one logical recording. A track is identified by the
// normalized forms of its name, artist and album together with its duration
// within a two second tolerance. Both the raw and normalized strings are
// persisted; lookups and full-text search only ever touch the normalized
// columns.
type Track struct {
	ID              int64
	Name            string
	NameLower       string
	ArtistName      string
	ArtistNameLower string
	AlbumName       string
	AlbumNameLower  string
	Duration        float64
	LastLyricsID    *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Lyrics is the current lyrics row referenced by LastLyricsID, filled
	// in by store reads that join it. Nil when the track has no lyrics yet.
	Lyrics *Lyrics
}
