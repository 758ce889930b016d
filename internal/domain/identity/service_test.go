package identity_test

import (
	"context"
	"testing"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/identity"
	"hrperf/internal/platform/memstore"
)

func newService(t *testing.T, actors ...identity.Actor) *identity.Service {
	t.Helper()
	store := memstore.New()
	for _, a := range actors {
		if _, err := store.CreateActor(context.Background(), a, "hash-"+a.ID); err != nil {
			t.Fatalf("seed actor: %v", err)
		}
	}
	return identity.NewService(store)
}

func TestActorForUsesStoredRole(t *testing.T) {
	svc := newService(t, identity.Actor{ID: "u1", Email: "u1@example.com", Role: identity.RoleManager, Active: true})
	actor, err := svc.ActorFor(context.Background(), identity.Claims{UserID: "u1", Role: "admin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor.Role != identity.RoleManager {
		t.Fatalf("expected stored role manager, got %s", actor.Role)
	}
}

func TestActorForRejectsUnusableClaims(t *testing.T) {
	svc := newService(t,
		identity.Actor{ID: "gone", Email: "gone@example.com", Role: identity.RoleEmployee},
		identity.Actor{ID: "odd", Email: "odd@example.com", Role: "contractor", Active: true},
	)
	cases := map[string]identity.Claims{
		"empty principal": {},
		"unknown actor":   {UserID: "nobody"},
		"deactivated":     {UserID: "gone"},
		"invalid role":    {UserID: "odd"},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ActorFor(context.Background(), claims)
			if !apperr.Is(err, apperr.KindIdentity) {
				t.Fatalf("expected identity error, got %v", err)
			}
		})
	}
}

func TestCredentialsLookupIsCaseInsensitive(t *testing.T) {
	svc := newService(t, identity.Actor{ID: "u1", Email: "Jane@Example.com", Role: identity.RoleEmployee, Active: true})
	creds, err := svc.Credentials(context.Background(), " JANE@example.COM ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.ActorID != "u1" || creds.PasswordHash != "hash-u1" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestExistsIgnoresInactive(t *testing.T) {
	svc := newService(t,
		identity.Actor{ID: "on", Email: "on@example.com", Role: identity.RoleEmployee, Active: true},
		identity.Actor{ID: "off", Email: "off@example.com", Role: identity.RoleEmployee},
	)
	ctx := context.Background()
	for id, want := range map[string]bool{"on": true, "off": false, "missing": false} {
		got, err := svc.Exists(ctx, id)
		if err != nil || got != want {
			t.Fatalf("%s: expected %v, got %v (%v)", id, want, got, err)
		}
	}
}

func TestRoleRank(t *testing.T) {
	if identity.RoleSuperAdmin.Rank() <= identity.RoleAdmin.Rank() || identity.RoleManager.Rank() <= identity.RoleEmployee.Rank() {
		t.Fatal("roles must rank employee < manager < admin < superadmin")
	}
	if identity.Role("intern").Valid() || identity.Role("intern").Rank() >= 0 {
		t.Fatal("unknown role must be invalid and rank below employee")
	}
}
