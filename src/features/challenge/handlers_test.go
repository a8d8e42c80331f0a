package challenge

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/lrclib/lrclib/src/catalog"
	"github.com/lrclib/lrclib/src/features/hosting"
)

func TestRequestChallenge(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: hosting.ErrorHandler})
	service := newService(t)
	RegisterRoutes(app, service)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/request-challenge", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var ch catalog.Challenge
	if err := json.NewDecoder(resp.Body).Decode(&ch); err != nil {
		t.Fatalf("decode challenge: %v", err)
	}
	if len(ch.Prefix) != prefixLength {
		t.Errorf("prefix length = %d, want %d", len(ch.Prefix), prefixLength)
	}
	if len(ch.Target) != 64 {
		t.Errorf("target length = %d, want 64 hex digits", len(ch.Target))
	}
}
