// Package auth turns credentials into access tokens and tokens back into claims.
package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/identity"
)

type Resolver interface {
	Credentials(ctx context.Context, email string) (identity.Credentials, error)
	ActorFor(ctx context.Context, claims identity.Claims) (identity.Actor, error)
}

type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Actor     identity.Actor `json:"user"`
}

type Service struct {
	resolver Resolver
	tokens   *TokenService
}

func NewService(resolver Resolver, tokens *TokenService) *Service {
	return &Service{resolver: resolver, tokens: tokens}
}

// Login checks the password and issues a token for the stored role. Unknown
// emails and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return LoginResult{}, apperr.Validation(apperr.FieldIssue{Field: "credentials", Reason: "email and password are required"})
	}
	creds, err := s.resolver.Credentials(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return LoginResult{}, apperr.Identity("invalid credentials")
		}
		return LoginResult{}, err
	}
	if creds.PasswordHash == "" || CheckPassword(creds.PasswordHash, password) != nil {
		return LoginResult{}, apperr.Identity("invalid credentials")
	}
	actor, err := s.resolver.ActorFor(ctx, identity.Claims{UserID: creds.ActorID})
	if err != nil {
		return LoginResult{}, err
	}
	token, expires, err := s.tokens.Issue(identity.Claims{UserID: actor.ID, Role: string(actor.Role)})
	if err != nil {
		slog.Error("token issue failed", "actorId", actor.ID, "err", err)
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: expires, Actor: actor}, nil
}

func (s *Service) Verify(token string) (identity.Claims, error) {
	return s.tokens.Verify(token)
}
