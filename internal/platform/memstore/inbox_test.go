package memstore

import (
	"context"
	"testing"
	"time"

	"hrperf/internal/domain/audit"
	"hrperf/internal/domain/notifications"
)

func TestPurgeKeepsUnreadAndRecent(t *testing.T) {
	ctx := context.Background()
	s := New()
	cutoff := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	old := cutoff.Add(-time.Hour)
	recent := cutoff.Add(time.Hour)

	for _, n := range []notifications.Notification{
		{ID: "n1", RecipientID: "u1", ReadAt: &old, CreatedAt: old},
		{ID: "n2", RecipientID: "u1", CreatedAt: old},
		{ID: "n3", RecipientID: "u1", ReadAt: &recent, CreatedAt: old},
	} {
		if err := s.CreateNotification(ctx, n); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	purged, err := s.PurgeReadNotifications(ctx, cutoff)
	if err != nil || purged != 1 {
		t.Fatalf("expected 1 purged, got %d (%v)", purged, err)
	}
	if total, _ := s.CountNotifications(ctx, "u1"); total != 2 {
		t.Fatalf("expected 2 notifications left, got %d", total)
	}

	_ = s.InsertEvent(ctx, audit.Event{ID: "e1", CreatedAt: old})
	_ = s.InsertEvent(ctx, audit.Event{ID: "e2", CreatedAt: recent})
	purged, err = s.PurgeAuditEvents(ctx, cutoff)
	if err != nil || purged != 1 {
		t.Fatalf("expected 1 audit event purged, got %d (%v)", purged, err)
	}
	left, _ := s.ListEvents(ctx, audit.Filter{}, 0, 0)
	if len(left) != 1 || left[0].ID != "e2" {
		t.Fatalf("unexpected events left %+v", left)
	}
}
