package db_test

import (
	"context"
	"testing"

	"hrperf/internal/domain/auth"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/workflow"
	"hrperf/internal/platform/config"
	"hrperf/internal/platform/db"
	"hrperf/internal/platform/memstore"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	catalog := workflow.NewService(store, identity.NewService(store), nil, nil, nil)
	cfg := config.Config{
		SeedSuperAdminEmail:    "Root@Example.com",
		SeedSuperAdminPassword: "correct horse battery",
		SeedTemplatesFile:      "testdata/templates.yaml",
	}

	for i := 0; i < 2; i++ {
		if err := db.Seed(ctx, store, catalog, cfg); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	admins, err := store.ListActors(ctx, identity.ActorFilter{Role: identity.RoleSuperAdmin})
	if err != nil {
		t.Fatalf("list actors: %v", err)
	}
	if len(admins) != 1 || admins[0].Email != "root@example.com" {
		t.Fatalf("expected one superadmin, got %+v", admins)
	}
	creds, err := store.FindCredentials(ctx, "root@example.com")
	if err != nil || auth.CheckPassword(creds.PasswordHash, "correct horse battery") != nil {
		t.Fatalf("expected usable credentials, err=%v", err)
	}

	templates, err := catalog.ListTemplates(ctx, admins[0], workflow.TemplateFilter{})
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 seeded templates, got %d", len(templates))
	}
	for _, tmpl := range templates {
		if tmpl.CreatedByID != admins[0].ID {
			t.Fatalf("expected templates owned by the superadmin, got %q", tmpl.CreatedByID)
		}
	}
}

func TestParseTemplatesRejectsUnknownFields(t *testing.T) {
	if _, err := db.ParseTemplates([]byte("templates:\n  - name: x\n    cadence: Annual\n")); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
	inputs, err := db.ParseTemplates([]byte("  \n"))
	if err != nil || len(inputs) != 0 {
		t.Fatalf("expected empty input to parse to nothing, got %v %v", inputs, err)
	}
}

func TestLoadTemplatesDecodesSections(t *testing.T) {
	inputs, err := db.LoadTemplates("testdata/templates.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(inputs))
	}
	annual := inputs[0]
	if annual.Frequency != workflow.FrequencyAnnual || !annual.Features.Goals || len(annual.Sections) != 2 {
		t.Fatalf("unexpected annual template %+v", annual)
	}
	q := annual.Sections[0].Questions[0]
	if q.Type != workflow.QuestionRating || !q.Required {
		t.Fatalf("unexpected question %+v", q)
	}
	if got := inputs[1].Sections[0].Questions[0].Options; len(got) != 3 {
		t.Fatalf("expected 3 options, got %v", got)
	}
}
