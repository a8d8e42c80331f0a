package providers

import (
	"context"

	"github.com/lrclib/lrclib/src/features/scraping"
)

// NoopProvider is the default lyrics provider. It never finds anything,
// which keeps the worker pool harmless until a real provider is wired in.
type NoopProvider struct{}

// NewNoopProvider creates a new no-op provider.
func NewNoopProvider() *NoopProvider {
	return &NoopProvider{}
}

// RetrieveLyrics reports that no lyrics were found.
func (p *NoopProvider) RetrieveLyrics(ctx context.Context, name, artistName, albumName string, duration float64) (*scraping.ScrapedLyrics, error) {
	return nil, nil
}
