package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"hrperf/internal/requestctx"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
}

type StoreAPI interface {
	InsertEvent(ctx context.Context, evt Event) error
	ListEvents(ctx context.Context, filter Filter, limit, offset int) ([]Event, error)
	CountEvents(ctx context.Context, filter Filter) (int, error)
}

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

// Record stores one event. Request id and client ip come from ctx.
func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error {
	evt := Event{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestctx.GetRequestID(ctx),
		IP:         requestctx.GetClientIP(ctx),
		CreatedAt:  time.Now().UTC(),
	}
	if before != nil {
		payload, err := json.Marshal(before)
		if err != nil {
			return err
		}
		evt.Before = payload
	}
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		evt.After = payload
	}
	return s.store.InsertEvent(ctx, evt)
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	return s.store.CountEvents(ctx, filter)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	return s.store.ListEvents(ctx, filter, limit, offset)
}
