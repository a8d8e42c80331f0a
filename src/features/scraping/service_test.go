package scraping

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lrclib/lrclib/src/catalog"
	"github.com/lrclib/lrclib/src/features/metrics"
	"github.com/lrclib/lrclib/src/infra/queue"
	_ "github.com/mattn/go-sqlite3"
)

type savedTrack struct {
	name, artist, album string
	duration            float64
}

type savedLyrics struct {
	plain, synced *string
	trackID       int64
	instrumental  bool
	source        *string
}

// mockStore is a mock implementation of catalog.Store. Begin hands out
// transactions from a throwaway in-memory database so that commit and
// rollback behave; the Tx write methods only record their arguments.
type mockStore struct {
	catalog.Store // Embed interface to avoid implementing all methods, will panic if unused methods called

	db *sql.DB

	mu       sync.Mutex
	tracks   []savedTrack
	lyrics   []savedLyrics
	beginErr error
	trackErr error
	cleaned  int
}

func newMockStore(t *testing.T) *mockStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &mockStore{db: db}
}

func (m *mockStore) Begin(ctx context.Context) (*sql.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return m.db.BeginTx(ctx, nil)
}

func (m *mockStore) AddTrackTx(ctx context.Context, tx *sql.Tx, name, artistName, albumName string, duration float64) (int64, error) {
	if m.trackErr != nil {
		return 0, m.trackErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append(m.tracks, savedTrack{name, artistName, albumName, duration})
	return int64(len(m.tracks)), nil
}

func (m *mockStore) AddLyricsTx(ctx context.Context, tx *sql.Tx, plain, synced *string, trackID int64, instrumental bool, source *string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lyrics = append(m.lyrics, savedLyrics{plain, synced, trackID, instrumental, source})
	return int64(len(m.lyrics)), nil
}

func (m *mockStore) CleanOldMissingTracks(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleaned++
	return 3, nil
}

type mockProvider struct {
	data *ScrapedLyrics
	err  error

	mu    sync.Mutex
	calls int
}

func (p *mockProvider) RetrieveLyrics(ctx context.Context, name, artistName, albumName string, duration float64) (*ScrapedLyrics, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.data, p.err
}

type panicProvider struct{}

func (p *panicProvider) RetrieveLyrics(ctx context.Context, name, artistName, albumName string, duration float64) (*ScrapedLyrics, error) {
	panic("provider blew up")
}

func strPtr(s string) *string { return &s }

func missing(name string) catalog.MissingTrack {
	return catalog.MissingTrack{Name: name, ArtistName: "Artist", AlbumName: "Album", Duration: 120}
}

func TestProcessNext_SavesFoundLyrics(t *testing.T) {
	store := newMockStore(t)
	q := queue.NewBounded(8)
	provider := &mockProvider{data: &ScrapedLyrics{PlainLyrics: strPtr("line one\nline two")}}
	service := NewService(store, q, provider, metrics.NewService(q))

	q.TryPush(catalog.MissingTrack{Name: " Yesterday ", ArtistName: "The Beatles", AlbumName: "Help!", Duration: 125})
	service.processNext(context.Background())

	if len(store.tracks) != 1 {
		t.Fatalf("saved %d tracks, want 1", len(store.tracks))
	}
	if store.tracks[0].name != "Yesterday" {
		t.Errorf("track name = %q, want trimmed %q", store.tracks[0].name, "Yesterday")
	}
	if len(store.lyrics) != 1 {
		t.Fatalf("saved %d lyrics, want 1", len(store.lyrics))
	}
	if store.lyrics[0].source != nil {
		t.Error("scraped lyrics must be stored without a source")
	}
	if store.lyrics[0].plain == nil || *store.lyrics[0].plain != "line one\nline two" {
		t.Errorf("plain lyrics = %v", store.lyrics[0].plain)
	}
	if q.Len() != 0 {
		t.Errorf("queue length = %d, want 0", q.Len())
	}
}

func TestProcessNext_NoLyricsFound(t *testing.T) {
	store := newMockStore(t)
	q := queue.NewBounded(8)
	service := NewService(store, q, &mockProvider{}, metrics.NewService(q))

	q.TryPush(missing("Unknown Song"))
	service.processNext(context.Background())

	if len(store.tracks) != 0 || len(store.lyrics) != 0 {
		t.Error("nothing should be persisted when the provider finds nothing")
	}
	if q.Len() != 0 {
		t.Errorf("queue length = %d, want 0", q.Len())
	}
}

func TestProcessNext_ProviderErrorRequeues(t *testing.T) {
	store := newMockStore(t)
	q := queue.NewBounded(8)
	service := NewService(store, q, &mockProvider{err: errors.New("upstream down")}, metrics.NewService(q))

	q.TryPush(missing("Some Song"))
	service.processNext(context.Background())

	if q.Len() != 1 {
		t.Errorf("queue length = %d, want 1 after re-enqueue", q.Len())
	}
	if len(store.tracks) != 0 {
		t.Error("nothing should be persisted on provider error")
	}
}

func TestProcessNext_BeginErrorRequeues(t *testing.T) {
	store := newMockStore(t)
	store.beginErr = errors.New("pool exhausted")
	q := queue.NewBounded(8)
	service := NewService(store, q, &mockProvider{data: &ScrapedLyrics{PlainLyrics: strPtr("text")}}, metrics.NewService(q))

	q.TryPush(missing("Some Song"))
	service.processNext(context.Background())

	if q.Len() != 1 {
		t.Errorf("queue length = %d, want 1 after re-enqueue", q.Len())
	}
	if len(store.lyrics) != 0 {
		t.Error("no lyrics should be saved when the transaction cannot start")
	}
}

func TestProcessNext_SaveErrorDropsItem(t *testing.T) {
	store := newMockStore(t)
	store.trackErr = errors.New("disk full")
	q := queue.NewBounded(8)
	service := NewService(store, q, &mockProvider{data: &ScrapedLyrics{PlainLyrics: strPtr("text")}}, metrics.NewService(q))

	q.TryPush(missing("Some Song"))
	service.processNext(context.Background())

	if q.Len() != 0 {
		t.Errorf("queue length = %d, want 0; save failures are not retried", q.Len())
	}
	if len(store.lyrics) != 0 {
		t.Error("lyrics insert should not happen after track insert failure")
	}
}

func TestProcessNext_RecoversFromPanic(t *testing.T) {
	store := newMockStore(t)
	q := queue.NewBounded(8)
	service := NewService(store, q, &panicProvider{}, metrics.NewService(q))

	q.TryPush(missing("Some Song"))
	service.processNext(context.Background())

	if q.Len() != 0 {
		t.Errorf("queue length = %d, want 0", q.Len())
	}
}

func TestStart_ZeroWorkersLeavesQueueAlone(t *testing.T) {
	store := newMockStore(t)
	q := queue.NewBounded(8)
	provider := &mockProvider{}
	service := NewService(store, q, provider, metrics.NewService(q))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q.TryPush(missing("Some Song"))
	service.Start(ctx, 0)
	time.Sleep(150 * time.Millisecond)

	if q.Len() != 1 {
		t.Errorf("queue length = %d, want 1 with zero workers", q.Len())
	}
	if provider.calls != 0 {
		t.Errorf("provider calls = %d, want 0", provider.calls)
	}
}

func TestStart_WorkersDrainQueue(t *testing.T) {
	store := newMockStore(t)
	q := queue.NewBounded(8)
	provider := &mockProvider{}
	service := NewService(store, q, provider, metrics.NewService(q))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 4; i++ {
		q.TryPush(missing("Song"))
	}
	service.Start(ctx, 2)

	deadline := time.Now().Add(2 * time.Second)
	for q.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if q.Len() != 0 {
		t.Errorf("queue length = %d, want 0 after workers drained it", q.Len())
	}
}
