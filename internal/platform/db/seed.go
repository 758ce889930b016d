package db

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/auth"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/workflow"
	"hrperf/internal/platform/config"
)

type TemplateCatalog interface {
	CreateTemplate(ctx context.Context, actor identity.Actor, in workflow.TemplateInput) (workflow.Template, error)
	ListTemplates(ctx context.Context, actor identity.Actor, filter workflow.TemplateFilter) ([]workflow.Template, error)
}

// systemActor owns seeded records when no superadmin is configured.
var systemActor = identity.Actor{ID: "system", Role: identity.RoleSuperAdmin, Active: true}

// Seed creates the configured superadmin and the review templates listed in
// SEED_TEMPLATES_FILE. Existing records are left alone, so Seed is safe to
// run on every start.
func Seed(ctx context.Context, actors identity.StoreAPI, templates TemplateCatalog, cfg config.Config) error {
	owner, err := ensureSuperAdmin(ctx, actors, cfg.SeedSuperAdminEmail, cfg.SeedSuperAdminPassword)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.SeedTemplatesFile) == "" {
		return nil
	}
	inputs, err := LoadTemplates(cfg.SeedTemplatesFile)
	if err != nil {
		return err
	}
	return ensureTemplates(ctx, templates, owner, inputs)
}

func ensureSuperAdmin(ctx context.Context, actors identity.StoreAPI, email, password string) (identity.Actor, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return systemActor, nil
	}
	creds, err := actors.FindCredentials(ctx, email)
	if err == nil {
		return actors.GetActor(ctx, creds.ActorID)
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return identity.Actor{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return identity.Actor{}, err
	}
	admin, err := actors.CreateActor(ctx, identity.Actor{
		ID:                 uuid.NewString(),
		Email:              email,
		FirstName:          "System",
		LastName:           "Administrator",
		Role:               identity.RoleSuperAdmin,
		ManagedDepartments: []string{},
		Active:             true,
		CreatedAt:          time.Now().UTC(),
	}, hash)
	if err != nil {
		return identity.Actor{}, err
	}
	slog.Info("seeded superadmin", "actorId", admin.ID, "email", email)
	return admin, nil
}

type templateFile struct {
	Templates []workflow.TemplateInput `yaml:"templates"`
}

// LoadTemplates reads review template definitions from a YAML file.
func LoadTemplates(path string) ([]workflow.TemplateInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	inputs, err := ParseTemplates(data)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return inputs, nil
}

func ParseTemplates(data []byte) ([]workflow.TemplateInput, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var file templateFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return file.Templates, nil
}

func ensureTemplates(ctx context.Context, catalog TemplateCatalog, owner identity.Actor, inputs []workflow.TemplateInput) error {
	existing, err := catalog.ListTemplates(ctx, owner, workflow.TemplateFilter{})
	if err != nil {
		return err
	}
	names := make(map[string]bool, len(existing))
	for _, t := range existing {
		names[strings.ToLower(t.Name)] = true
	}
	for _, in := range inputs {
		key := strings.ToLower(strings.TrimSpace(in.Name))
		if names[key] {
			continue
		}
		t, err := catalog.CreateTemplate(ctx, owner, in)
		if err != nil {
			return fmt.Errorf("seed template %q: %w", in.Name, err)
		}
		names[key] = true
		slog.Info("seeded review template", "templateId", t.ID, "name", t.Name)
	}
	return nil
}
