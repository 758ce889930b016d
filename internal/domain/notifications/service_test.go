package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeStore struct {
	created []Notification
	email   string
	failAdd bool
}

func (f *fakeStore) CreateNotification(ctx context.Context, n Notification) error {
	if f.failAdd {
		return errors.New("insert failed")
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeStore) RecipientEmail(ctx context.Context, recipientID string) (string, error) {
	return f.email, nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, recipientID string, limit, offset int) ([]Notification, error) {
	return f.created, nil
}

func (f *fakeStore) CountNotifications(ctx context.Context, recipientID string) (int, error) {
	return len(f.created), nil
}

func (f *fakeStore) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	return nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, from, to, subject, body string) error {
	m.sent = append(m.sent, to+"|"+subject)
	return m.err
}

func TestDeliverPersistsAndMails(t *testing.T) {
	store := &fakeStore{email: "e@example.com"}
	mailer := &fakeMailer{}
	svc := New(store, mailer, "hr@example.com", 4)

	err := svc.Deliver(context.Background(), "e1", KindGoalUpdated, map[string]any{"title": "Ship v2", "status": "In Progress", "progress": 45})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(store.created) != 1 || store.created[0].Title != "Goal updated: Ship v2" {
		t.Fatalf("unexpected notifications %+v", store.created)
	}
	if !strings.Contains(store.created[0].Body, "45%") {
		t.Fatalf("unexpected body %q", store.created[0].Body)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "e@example.com|Goal updated: Ship v2" {
		t.Fatalf("unexpected mail %+v", mailer.sent)
	}
}

func TestDeliverSwallowsMailFailure(t *testing.T) {
	store := &fakeStore{email: "e@example.com"}
	svc := New(store, &fakeMailer{err: errors.New("smtp down")}, "", 4)
	if err := svc.Deliver(context.Background(), "e1", KindReviewCompleted, map[string]any{"reviewId": "r1"}); err != nil {
		t.Fatalf("expected mail failure to be swallowed, got %v", err)
	}
	if len(store.created) != 1 {
		t.Fatal("expected notification to be stored")
	}
}

func TestDeliverRejectsUnknownKind(t *testing.T) {
	svc := New(&fakeStore{}, nil, "", 1)
	if err := svc.Deliver(context.Background(), "e1", "mystery", nil); err == nil {
		t.Fatal("expected unknown kind error")
	}
}

func TestSendReportsFullQueue(t *testing.T) {
	svc := New(&fakeStore{}, nil, "", 1)
	if err := svc.Send(context.Background(), "e1", KindReviewSubmitted, nil); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := svc.Send(context.Background(), "e1", KindReviewSubmitted, nil); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected queue full, got %v", err)
	}
}
