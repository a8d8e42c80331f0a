package catalog

import "time"

// Flag is a user-submitted concern against the current lyrics of a track.
// Flags are append-only; nothing in the service ever updates or deletes them.
type Flag struct {
	ID        int64
	LyricsID  int64
	Content   string
	CreatedAt time.Time
}
