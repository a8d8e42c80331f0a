package hosting

import (
	"github.com/lrclib/lrclib/src/catalog"
)

// TrackResponse is the JSON shape of a track on all successful lyric
// lookups. Name and TrackName both carry the track name; clients of the
// original API read one or the other.
type TrackResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  *string `json:"plainLyrics"`
	SyncedLyrics *string `json:"syncedLyrics"`
}

// NewTrackResponse builds the response shape from a track joined with
// its current lyrics. A track without lyrics is not instrumental and
// carries null lyric fields.
func NewTrackResponse(track *catalog.Track) TrackResponse {
	resp := TrackResponse{
		ID:         track.ID,
		Name:       track.Name,
		TrackName:  track.Name,
		ArtistName: track.ArtistName,
		AlbumName:  track.AlbumName,
		Duration:   track.Duration,
	}
	if track.Lyrics != nil {
		resp.Instrumental = track.Lyrics.Instrumental
		resp.PlainLyrics = track.Lyrics.PlainLyrics
		resp.SyncedLyrics = track.Lyrics.SyncedLyrics
	}
	return resp
}
