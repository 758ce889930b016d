package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sender delivers a templated message to an actor. Callers treat a returned
// error as non-fatal.
type Sender interface {
	Send(ctx context.Context, recipientID, kind string, payload map[string]any) error
}

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Notification struct {
	ID          string     `json:"id"`
	RecipientID string     `json:"recipientId"`
	Kind        string     `json:"type"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

var ErrQueueFull = errors.New("notification queue full")

type message struct {
	RecipientID string
	Kind        string
	Payload     map[string]any
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
	queue       chan message
}

func New(store StoreAPI, mailer Mailer, from string, queueSize int) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	if queueSize <= 0 {
		queueSize = 128
	}
	return &Service{store: store, Mailer: mailer, DefaultFrom: from, queue: make(chan message, queueSize)}
}

// Start runs the delivery worker until ctx is done.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Send enqueues a message and returns immediately.
func (s *Service) Send(ctx context.Context, recipientID, kind string, payload map[string]any) error {
	if recipientID == "" {
		return nil
	}
	select {
	case s.queue <- message{RecipientID: recipientID, Kind: kind, Payload: payload}:
		return nil
	default:
		slog.Warn("notification queue full", "kind", kind, "recipientId", recipientID)
		return ErrQueueFull
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.queue:
			if err := s.Deliver(context.WithoutCancel(ctx), msg.RecipientID, msg.Kind, msg.Payload); err != nil {
				slog.Warn("notification delivery failed", "kind", msg.Kind, "recipientId", msg.RecipientID, "err", err)
			}
		}
	}
}

// Deliver renders and persists the notification, then emails it. Email
// failures are logged and do not fail the delivery.
func (s *Service) Deliver(ctx context.Context, recipientID, kind string, payload map[string]any) error {
	title, body, err := Render(kind, payload)
	if err != nil {
		return err
	}
	n := Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	email, err := s.store.RecipientEmail(ctx, recipientID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, title, body); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, recipientID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, recipientID, limit, offset)
}

func (s *Service) Count(ctx context.Context, recipientID string) (int, error) {
	return s.store.CountNotifications(ctx, recipientID)
}

func (s *Service) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	return s.store.MarkRead(ctx, recipientID, notificationID)
}
