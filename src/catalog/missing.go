package catalog

// MissingTrack records a lookup that found no track, so a background worker
// can try to source its lyrics later. It exists durably in the
// missing_tracks table (the record that a request was already enqueued) and
// transiently on the in-memory queue (the pending work itself).
type MissingTrack struct {
	Name       string
	ArtistName string
	AlbumName  string
	Duration   float64
}

// MissingQueue is a bounded FIFO of missing tracks. Both ends are
// non-blocking: TryPush reports overflow instead of waiting and TryPop
// reports emptiness instead of waiting. Any number of producers and
// consumers may use it concurrently.
type MissingQueue interface {
	TryPush(mt MissingTrack) bool
	TryPop() (MissingTrack, bool)
	Len() int
	Cap() int
}
