package workflow

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/authz"
	"hrperf/internal/domain/identity"
)

func templateResource(t Template) authz.Resource {
	return authz.Resource{Kind: authz.KindTemplate, ID: t.ID, CreatedByID: t.CreatedByID}
}

func applyTemplate(t *Template, in TemplateInput) {
	t.Name = strings.TrimSpace(in.Name)
	t.Description = strings.TrimSpace(in.Description)
	t.Frequency = in.Frequency
	if t.Frequency == "" {
		t.Frequency = FrequencyAnnual
	}
	t.Status = in.Status
	if t.Status == "" {
		t.Status = TemplateActive
	}
	t.Sections = cloneSections(in.Sections)
	for i := range t.Sections {
		for j := range t.Sections[i].Questions {
			if t.Sections[i].Questions[j].Type == "" {
				t.Sections[i].Questions[j].Type = QuestionText
			}
		}
	}
	t.Features = in.Features
}

func (s *Service) CreateTemplate(ctx context.Context, actor identity.Actor, in TemplateInput) (Template, error) {
	if err := can(actor, authz.ActionCreate, authz.Resource{Kind: authz.KindTemplate}); err != nil {
		return Template{}, err
	}
	if err := validateTemplate(in); err != nil {
		return Template{}, err
	}
	now := s.now()
	t := Template{ID: uuid.NewString(), CreatedByID: actor.ID, CreatedAt: now, UpdatedAt: now}
	applyTemplate(&t, in)
	created, err := s.store.CreateTemplate(ctx, t)
	if err != nil {
		return Template{}, err
	}
	s.after(ctx, actor, "template", "create", created.ID, nil, created)
	return created, nil
}

func (s *Service) GetTemplate(ctx context.Context, actor identity.Actor, id string) (Template, error) {
	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return Template{}, err
	}
	if err := can(actor, authz.ActionRead, templateResource(t)); err != nil {
		return Template{}, err
	}
	return t, nil
}

func (s *Service) ListTemplates(ctx context.Context, actor identity.Actor, filter TemplateFilter) ([]Template, error) {
	if err := can(actor, authz.ActionRead, authz.Resource{Kind: authz.KindTemplate}); err != nil {
		return nil, err
	}
	return s.store.ListTemplates(ctx, filter)
}

// guardTemplateMutable rejects changes to a template that already drives
// started or finished work.
func guardTemplateMutable(inUse bool, action string) error {
	if inUse {
		return apperr.InvalidTransition("template", "InUse", action)
	}
	return nil
}

func (s *Service) UpdateTemplate(ctx context.Context, actor identity.Actor, id string, in TemplateInput) (Template, error) {
	if err := validateTemplate(in); err != nil {
		return Template{}, err
	}
	var before Template
	updated, err := s.store.UpdateTemplate(ctx, id, func(t *Template, inUse bool) error {
		before = *t
		if err := can(actor, authz.ActionUpdate, templateResource(*t)); err != nil {
			return err
		}
		if err := guardTemplateMutable(inUse, actionUpdate); err != nil {
			return err
		}
		applyTemplate(t, in)
		t.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return Template{}, err
	}
	s.after(ctx, actor, "template", "update", id, before, updated)
	return updated, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, actor identity.Actor, id string) error {
	var current Template
	err := s.store.DeleteTemplate(ctx, id, func(t Template, inUse bool) error {
		current = t
		if err := can(actor, authz.ActionDelete, templateResource(t)); err != nil {
			return err
		}
		return guardTemplateMutable(inUse, actionDelete)
	})
	if err != nil {
		return err
	}
	s.after(ctx, actor, "template", "delete", id, current, nil)
	return nil
}
