package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c, err := New(16, time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Set("challenge:abc", "target")
	got, ok := c.Get("challenge:abc")
	if !ok {
		t.Fatal("expected hit for freshly set key")
	}
	if got != "target" {
		t.Errorf("got %q, want %q", got, "target")
	}

	if _, ok := c.Get("challenge:missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestSetReplacesValue(t *testing.T) {
	c, err := New(16, time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Set("k", "one")
	c.Set("k", "two")
	got, ok := c.Get("k")
	if !ok || got != "two" {
		t.Errorf("got (%q, %v), want (%q, true)", got, ok, "two")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLifetimeExpiry(t *testing.T) {
	c, err := New(16, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(120 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after lifetime elapsed")
	}
}

func TestIdleExpiry(t *testing.T) {
	c, err := NewWithIdle(16, time.Hour, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWithIdle failed: %v", err)
	}

	c.Set("k", "v")
	time.Sleep(250 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after idle bound elapsed")
	}
}

func TestAccessResetsIdle(t *testing.T) {
	c, err := NewWithIdle(16, time.Hour, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWithIdle failed: %v", err)
	}

	c.Set("k", "v")
	for i := 0; i < 8; i++ {
		time.Sleep(50 * time.Millisecond)
		if _, ok := c.Get("k"); !ok {
			t.Fatalf("entry expired on access %d despite regular reads", i)
		}
	}
}

func TestCapacityEviction(t *testing.T) {
	c, err := New(2, time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected newest entry to survive eviction")
	}
}

func TestRemove(t *testing.T) {
	c, err := New(16, time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Set("k", "v")
	if !c.Remove("k") {
		t.Error("Remove should report true for a present key")
	}
	if c.Remove("k") {
		t.Error("Remove should report false for an absent key")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Remove")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c, err := New(128, time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	done := make(chan struct{})
	for w := 0; w < 4; w++ {
		go func(w int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%32)
				c.Set(key, "v")
				c.Get(key)
			}
		}(w)
	}
	for w := 0; w < 4; w++ {
		<-done
	}
}
