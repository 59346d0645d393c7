// Package statestoretest provides a reusable conformance suite for
// statestore.Store implementations.
package statestoretest

import (
	"context"
	"testing"
	"time"

	"github.com/ktb-chat/chat-state-go/statestore"
)

// StoreFactory creates a new statestore.Store instance for testing.
type StoreFactory func(t *testing.T) statestore.Store

// RunStoreTests runs the complete Store test suite against the provided factory.
func RunStoreTests(t *testing.T, factory StoreFactory) {
	t.Run("SetAndGet", func(t *testing.T) { testSetAndGet(t, factory) })
	t.Run("GetAbsent", func(t *testing.T) { testGetAbsent(t, factory) })
	t.Run("OverwriteReplacesValue", func(t *testing.T) { testOverwrite(t, factory) })
	t.Run("TTLExpiry", func(t *testing.T) { testTTLExpiry(t, factory) })
	t.Run("SetWithoutTTLDoesNotExpire", func(t *testing.T) { testNoTTL(t, factory) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory) })
	t.Run("DeleteAbsentKey", func(t *testing.T) { testDeleteAbsent(t, factory) })
	t.Run("SizeCountsKeys", func(t *testing.T) { testSize(t, factory) })
}

func testSetAndGet(t *testing.T, factory StoreFactory) {
	s := factory(t)
	defer s.Close()

	ctx := context.Background()
	data := []byte("test-data")

	if err := s.Set(ctx, "k1", data); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	item, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item == nil {
		t.Fatal("Get() returned nil item")
	}
	if string(item.Data) != string(data) {
		t.Fatalf("Get() returned wrong data: got %s, want %s", item.Data, data)
	}
	if item.CreatedAt.IsZero() {
		t.Fatal("Get() returned zero CreatedAt")
	}
	if item.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", item.ExpiresAt)
	}
}

func testGetAbsent(t *testing.T, factory StoreFactory) {
	s := factory(t)
	defer s.Close()

	item, err := s.Get(context.Background(), "never-written")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil item for absent key, got %+v", item)
	}
}

func testOverwrite(t *testing.T, factory StoreFactory) {
	s := factory(t)
	defer s.Close()

	ctx := context.Background()
	if err := s.Set(ctx, "k1", []byte("first")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := s.Set(ctx, "k1", []byte("second")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	item, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item == nil {
		t.Fatal("Get() returned nil item")
	}
	if string(item.Data) != "second" {
		t.Fatalf("expected last write to win, got %s", item.Data)
	}
}

func testTTLExpiry(t *testing.T, factory StoreFactory) {
	s := factory(t)
	defer s.Close()

	ctx := context.Background()
	if err := s.Set(ctx, "k1", []byte("ephemeral"), statestore.WithTTL(50*time.Millisecond)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	item, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item == nil {
		t.Fatal("expected item to exist before expiry")
	}
	if item.ExpiresAt == nil {
		t.Fatal("expected ExpiresAt to be set")
	}

	time.Sleep(100 * time.Millisecond)

	item, err = s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() after expiry failed: %v", err)
	}
	if item != nil {
		t.Fatalf("expected expired key to read as absent, got %+v", item)
	}
}

func testNoTTL(t *testing.T, factory StoreFactory) {
	s := factory(t)
	defer s.Close()

	ctx := context.Background()
	if err := s.Set(ctx, "k1", []byte("durable")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	item, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item == nil {
		t.Fatal("expected key without TTL to survive")
	}
}

func testDelete(t *testing.T, factory StoreFactory) {
	s := factory(t)
	defer s.Close()

	ctx := context.Background()
	if err := s.Set(ctx, "k1", []byte("data")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	item, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item != nil {
		t.Fatal("expected key to be gone after Delete()")
	}
}

func testDeleteAbsent(t *testing.T, factory StoreFactory) {
	s := factory(t)
	defer s.Close()

	if err := s.Delete(context.Background(), "never-written"); err != nil {
		t.Fatalf("Delete() of absent key failed: %v", err)
	}
}

func testSize(t *testing.T, factory StoreFactory) {
	s := factory(t)
	defer s.Close()

	ctx := context.Background()
	before, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}

	if err := s.Set(ctx, "size-a", []byte("a")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := s.Set(ctx, "size-b", []byte("b")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	after, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	if after < before+2 {
		t.Fatalf("expected key count to grow by at least 2: before=%d after=%d", before, after)
	}
}
