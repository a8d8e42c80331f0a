package lookup

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/lrclib/lrclib/src/catalog"
	"github.com/lrclib/lrclib/src/features/hosting"
)

func newTestApp(t *testing.T, store *mockStore) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: hosting.ErrorHandler})
	service, _ := newLookup(t, store)
	RegisterRoutes(app, service)
	return app
}

func decodeError(t *testing.T, body io.Reader) hosting.Error {
	t.Helper()
	var apiErr hosting.Error
	if err := json.NewDecoder(body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return apiErr
}

func TestGetByMetadata_MissingParams(t *testing.T) {
	app := newTestApp(t, &mockStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/get?track_name=Yesterday", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Name != "ValidationError" {
		t.Errorf("error name = %q, want ValidationError", apiErr.Name)
	}
}

func TestGetByMetadata_NotFound(t *testing.T) {
	app := newTestApp(t, &mockStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/get?track_name=Unknown&artist_name=Nobody", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	apiErr := decodeError(t, resp.Body)
	if apiErr.Name != "TrackNotFound" {
		t.Errorf("error name = %q, want TrackNotFound", apiErr.Name)
	}
	if apiErr.Message != "Failed to find specified track" {
		t.Errorf("error message = %q", apiErr.Message)
	}
}

func TestGetByMetadata_Found(t *testing.T) {
	plain := "line one\nline two"
	store := &mockStore{track: &catalog.Track{
		ID:         7,
		Name:       "Yesterday",
		ArtistName: "The Beatles",
		AlbumName:  "Help!",
		Duration:   125,
		Lyrics:     &catalog.Lyrics{PlainLyrics: &plain},
	}}
	app := newTestApp(t, store)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/get?track_name=Yesterday&artist_name=The+Beatles&album_name=Help!&duration=125", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body hosting.TrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Name != "Yesterday" || body.TrackName != "Yesterday" {
		t.Errorf("name = %q, trackName = %q; both must carry the track name", body.Name, body.TrackName)
	}
	if body.PlainLyrics == nil || *body.PlainLyrics != plain {
		t.Errorf("plainLyrics = %v", body.PlainLyrics)
	}
	if body.SyncedLyrics != nil {
		t.Error("syncedLyrics must stay null when absent")
	}
}

func TestGetByMetadata_DurationOutOfRange(t *testing.T) {
	app := newTestApp(t, &mockStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/get?track_name=Yesterday&artist_name=The+Beatles&duration=4000", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetByID(t *testing.T) {
	store := &mockStore{trackByID: &catalog.Track{ID: 7, Name: "Yesterday"}}
	app := newTestApp(t, store)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/get/7", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGetByID_NonNumericID(t *testing.T) {
	app := newTestApp(t, &mockStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/get/abc", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
