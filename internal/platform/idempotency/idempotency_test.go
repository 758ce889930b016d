package idempotency

import (
	"context"
	"errors"
	"testing"
)

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}

func TestMemoryStoreReplaysAndDetectsConflicts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if _, _, found, err := s.Check(ctx, "a1", "checkin", "k1", "h1"); found || err != nil {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}
	if err := s.Save(ctx, "a1", "checkin", "k1", "h1", 201, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	status, body, found, err := s.Check(ctx, "a1", "checkin", "k1", "h1")
	if err != nil || !found || status != 201 || string(body) != `{"ok":true}` {
		t.Fatalf("unexpected replay %d %s %v %v", status, body, found, err)
	}
	if _, _, _, err := s.Check(ctx, "a1", "checkin", "k1", "h2"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := s.Save(ctx, "a1", "checkin", "k1", "h2", 201, nil); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected save conflict, got %v", err)
	}
	if _, _, found, _ := s.Check(ctx, "a2", "checkin", "k1", "h1"); found {
		t.Fatal("keys must be scoped per actor")
	}
}
