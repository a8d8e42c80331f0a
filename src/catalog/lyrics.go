package catalog

import "time"

// Lyrics is one published version of a track's lyrics. Tracks keep a
// back-reference to their most recent row via Track.LastLyricsID; older rows
// are retained as history.
type Lyrics struct {
	ID              int64
	PlainLyrics     *string
	SyncedLyrics    *string
	HasPlainLyrics  bool
	HasSyncedLyrics bool
	Instrumental    bool
	TrackID         int64
	Source          *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SourceLrclib tags lyrics rows submitted through the publish endpoint.
// Rows committed by background workers carry a nil source instead.
const SourceLrclib = "lrclib"
