package memstore

import (
	"context"
	"time"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/audit"
	"hrperf/internal/domain/notifications"
	"hrperf/internal/platform/jobs"
)

var (
	_ jobs.NotificationPurger = (*Store)(nil)
	_ jobs.AuditPurger        = (*Store)(nil)
)

func (s *Store) CreateNotification(ctx context.Context, n notifications.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox.put(n.ID, n)
	return nil
}

func (s *Store) RecipientEmail(ctx context.Context, recipientID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.actors.get(recipientID)
	if !ok {
		return "", apperr.NotFound("actor", recipientID)
	}
	return row.actor.Email, nil
}

func (s *Store) ListNotifications(ctx context.Context, recipientID string, limit, offset int) ([]notifications.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]notifications.Notification, 0)
	for i := len(s.inbox.order) - 1; i >= 0; i-- {
		n := s.inbox.rows[s.inbox.order[i]]
		if n.RecipientID == recipientID {
			matched = append(matched, n)
		}
	}
	return page(matched, limit, offset), nil
}

func (s *Store) CountNotifications(ctx context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.inbox.rows {
		if n.RecipientID == recipientID {
			total++
		}
	}
	return total, nil
}

func (s *Store) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.inbox.get(notificationID)
	if !ok || n.RecipientID != recipientID {
		return apperr.NotFound("notification", notificationID)
	}
	now := time.Now().UTC()
	n.ReadAt = &now
	s.inbox.put(notificationID, n)
	return nil
}

func (s *Store) PurgeReadNotifications(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stale []string
	s.inbox.each(func(n notifications.Notification) {
		if n.ReadAt != nil && n.ReadAt.Before(before) {
			stale = append(stale, n.ID)
		}
	})
	for _, id := range stale {
		s.inbox.remove(id)
	}
	return int64(len(stale)), nil
}

func (s *Store) InsertEvent(ctx context.Context, evt audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

func (s *Store) ListEvents(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]audit.Event, 0)
	for i := len(s.events) - 1; i >= 0; i-- {
		if eventMatches(s.events[i], filter) {
			matched = append(matched, s.events[i])
		}
	}
	return page(matched, limit, offset), nil
}

func (s *Store) CountEvents(ctx context.Context, filter audit.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, evt := range s.events {
		if eventMatches(evt, filter) {
			total++
		}
	}
	return total, nil
}

func (s *Store) PurgeAuditEvents(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	for _, evt := range s.events {
		if !evt.CreatedAt.Before(before) {
			kept = append(kept, evt)
		}
	}
	purged := int64(len(s.events) - len(kept))
	s.events = kept
	return purged, nil
}

func eventMatches(evt audit.Event, filter audit.Filter) bool {
	return (filter.Action == "" || evt.Action == filter.Action) &&
		(filter.EntityType == "" || evt.EntityType == filter.EntityType) &&
		(filter.EntityID == "" || evt.EntityID == filter.EntityID) &&
		(filter.ActorID == "" || evt.ActorID == filter.ActorID)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
