package lookup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lrclib/lrclib/src/catalog"
	"github.com/lrclib/lrclib/src/infra/cache"
	"github.com/lrclib/lrclib/src/infra/queue"
)

type metadataCall struct {
	nameLower, artistLower, albumLower string
}

type mockStore struct {
	catalog.Store // Embed interface to avoid implementing all methods, will panic if unused methods called

	mu            sync.Mutex
	track         *catalog.Track
	albumlessOnly bool
	calls         []metadataCall
	missingExists bool
	missingAdded  []catalog.MissingTrack
	trackByID     *catalog.Track
}

func (m *mockStore) GetTrackByID(ctx context.Context, id int64) (*catalog.Track, error) {
	return m.trackByID, nil
}

func (m *mockStore) GetTrackByMetadata(ctx context.Context, nameLower, artistLower, albumLower string, duration *float64) (*catalog.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, metadataCall{nameLower, artistLower, albumLower})
	if m.albumlessOnly && albumLower != "" {
		return nil, nil
	}
	return m.track, nil
}

func (m *mockStore) GetMissingTrackIDByMetadata(ctx context.Context, mt catalog.MissingTrack) (int64, bool, error) {
	return 0, m.missingExists, nil
}

func (m *mockStore) AddMissingTrack(ctx context.Context, mt catalog.MissingTrack) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missingAdded = append(m.missingAdded, mt)
	return int64(len(m.missingAdded)), nil
}

func newLookup(t *testing.T, store *mockStore) (*Service, catalog.MissingQueue) {
	t.Helper()
	c, err := cache.New(64, time.Minute)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	q := queue.NewBounded(8)
	return NewService(store, c, q), q
}

func durPtr(d float64) *float64 { return &d }

func TestGetByMetadata_FoundOnFirstAttempt(t *testing.T) {
	store := &mockStore{track: &catalog.Track{ID: 7, Name: "Yesterday"}}
	service, _ := newLookup(t, store)

	track, err := service.GetByMetadata(context.Background(), "Yesterday", "The Beatles", "Help!", durPtr(125))
	if err != nil {
		t.Fatalf("GetByMetadata: %v", err)
	}
	if track == nil || track.ID != 7 {
		t.Fatalf("track = %+v, want ID 7", track)
	}
	if len(store.calls) != 1 {
		t.Errorf("store queried %d times, want 1", len(store.calls))
	}
}

func TestGetByMetadata_FallsBackWithoutAlbum(t *testing.T) {
	store := &mockStore{track: &catalog.Track{ID: 7}, albumlessOnly: true}
	service, _ := newLookup(t, store)

	track, err := service.GetByMetadata(context.Background(), "Yesterday", "The Beatles", "Help!", durPtr(125))
	if err != nil {
		t.Fatalf("GetByMetadata: %v", err)
	}
	if track == nil {
		t.Fatal("track not found via the albumless retry")
	}
	if len(store.calls) != 2 {
		t.Fatalf("store queried %d times, want 2", len(store.calls))
	}
	if store.calls[0].albumLower == "" {
		t.Error("first attempt must include the album")
	}
	if store.calls[1].albumLower != "" {
		t.Error("second attempt must drop the album")
	}
}

func TestGetByMetadata_BlankNamesSkipTheStore(t *testing.T) {
	store := &mockStore{track: &catalog.Track{ID: 7}}
	service, _ := newLookup(t, store)

	track, err := service.GetByMetadata(context.Background(), "   ", "The Beatles", "", nil)
	if err != nil {
		t.Fatalf("GetByMetadata: %v", err)
	}
	if track != nil {
		t.Error("blank track name must not match anything")
	}
	if len(store.calls) != 0 {
		t.Errorf("store queried %d times, want 0", len(store.calls))
	}
}

func TestHandleMissingTrack_RequiresAlbumAndDuration(t *testing.T) {
	store := &mockStore{}
	service, q := newLookup(t, store)

	service.HandleMissingTrack(context.Background(), "Yesterday", "The Beatles", "", durPtr(125))
	service.HandleMissingTrack(context.Background(), "Yesterday", "The Beatles", "Help!", nil)

	if len(store.missingAdded) != 0 || q.Len() != 0 {
		t.Error("requests without album or duration must be ignored")
	}
}

func TestHandleMissingTrack_RecordsAndEnqueuesOnce(t *testing.T) {
	store := &mockStore{}
	service, q := newLookup(t, store)

	service.HandleMissingTrack(context.Background(), " Yesterday ", "The Beatles", "Help!", durPtr(125))

	if len(store.missingAdded) != 1 {
		t.Fatalf("recorded %d missing tracks, want 1", len(store.missingAdded))
	}
	if got := store.missingAdded[0].Name; got != "Yesterday" {
		t.Errorf("recorded name = %q, want trimmed %q", got, "Yesterday")
	}
	if q.Len() != 1 {
		t.Errorf("queue length = %d, want 1", q.Len())
	}

	// The identical request is suppressed by the cache entry.
	service.HandleMissingTrack(context.Background(), " Yesterday ", "The Beatles", "Help!", durPtr(125))
	if len(store.missingAdded) != 1 || q.Len() != 1 {
		t.Error("duplicate request must not record or enqueue again")
	}
}

func TestHandleMissingTrack_KnownMissingNotRequeued(t *testing.T) {
	store := &mockStore{missingExists: true}
	service, q := newLookup(t, store)

	service.HandleMissingTrack(context.Background(), "Yesterday", "The Beatles", "Help!", durPtr(125))

	if len(store.missingAdded) != 0 {
		t.Error("a missing track already on record must not be recorded again")
	}
	if q.Len() != 0 {
		t.Errorf("queue length = %d, want 0", q.Len())
	}
}
