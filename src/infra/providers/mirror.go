package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lrclib/lrclib/src/features/scraping"
)

type mirrorResponse struct {
	ID           int64   `json:"id"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  *string `json:"plainLyrics"`
	SyncedLyrics *string `json:"syncedLyrics"`
}

// MirrorProvider retrieves lyrics from another running instance over its
// public API. Useful for seeding a fresh deployment from an upstream
// catalog.
type MirrorProvider struct {
	baseURL string
	client  *http.Client
}

// NewMirrorProvider creates a provider that queries the instance at baseURL.
func NewMirrorProvider(baseURL string) *MirrorProvider {
	return &MirrorProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// RetrieveLyrics looks the track up by its full signature. An upstream 404
// means the track is unknown there, not an error.
func (p *MirrorProvider) RetrieveLyrics(ctx context.Context, name, artistName, albumName string, duration float64) (*scraping.ScrapedLyrics, error) {
	params := url.Values{}
	params.Set("track_name", name)
	params.Set("artist_name", artistName)
	params.Set("album_name", albumName)
	params.Set("duration", fmt.Sprintf("%v", duration))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/get?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Lrclib-Client", "lrclib-mirror")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	var body mirrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode upstream response: %w", err)
	}

	if !body.Instrumental && body.PlainLyrics == nil && body.SyncedLyrics == nil {
		return nil, nil
	}
	return &scraping.ScrapedLyrics{
		PlainLyrics:  body.PlainLyrics,
		SyncedLyrics: body.SyncedLyrics,
		Instrumental: body.Instrumental,
	}, nil
}
