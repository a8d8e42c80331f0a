package watcher

import (
	"time"
)

// Event signals that the watched file changed on disk. Rapid bursts of
// filesystem events (editors writing temp files, atomic renames) are
// debounced into a single Event.
type Event struct {
	Path      string
	Timestamp time.Time
}
