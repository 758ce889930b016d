package identity

import (
	"context"
	"log/slog"
	"strings"

	"hrperf/internal/domain/apperr"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// ActorFor resolves verified claims into the stored actor. The stored role wins
// over the role carried in the token so a demotion takes effect before the token expires.
func (s *Service) ActorFor(ctx context.Context, claims Claims) (Actor, error) {
	if strings.TrimSpace(claims.UserID) == "" {
		return Actor{}, apperr.Identity("claims carry no principal")
	}
	actor, err := s.store.GetActor(ctx, claims.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Actor{}, apperr.Identity("principal does not exist")
		}
		return Actor{}, err
	}
	if !actor.Active {
		return Actor{}, apperr.Identity("principal is deactivated")
	}
	if !actor.Role.Valid() {
		return Actor{}, apperr.Identity("principal has an unknown role")
	}
	if claims.Role != "" && Role(claims.Role) != actor.Role {
		slog.Info("token role differs from stored role", "actorId", actor.ID, "tokenRole", claims.Role, "role", actor.Role)
	}
	return actor, nil
}

func (s *Service) Get(ctx context.Context, id string) (Actor, error) {
	return s.store.GetActor(ctx, id)
}

// Exists reports whether id names an active actor.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	actor, err := s.store.GetActor(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return actor.Active, nil
}

func (s *Service) Credentials(ctx context.Context, email string) (Credentials, error) {
	return s.store.FindCredentials(ctx, strings.ToLower(strings.TrimSpace(email)))
}
