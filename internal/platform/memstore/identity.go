package memstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/identity"
)

func (s *Store) GetActor(ctx context.Context, id string) (identity.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.actors.get(id)
	if !ok {
		return identity.Actor{}, apperr.NotFound("actor", id)
	}
	return clone(row.actor)
}

func (s *Store) FindCredentials(ctx context.Context, email string) (identity.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.actors.order {
		row := s.actors.rows[id]
		if strings.ToLower(row.actor.Email) == email {
			return identity.Credentials{ActorID: row.actor.ID, PasswordHash: row.passwordHash}, nil
		}
	}
	return identity.Credentials{}, apperr.NotFound("actor", email)
}

func (s *Store) ListActors(ctx context.Context, filter identity.ActorFilter) ([]identity.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]identity.Actor, 0)
	var err error
	s.actors.each(func(row actorRow) {
		a := row.actor
		switch {
		case filter.Role != "" && a.Role != filter.Role:
		case filter.DepartmentID != "" && a.DepartmentID != filter.DepartmentID:
		case filter.ManagedBy != "" && a.ManagedBy != filter.ManagedBy:
		case filter.ActiveOnly && !a.Active:
		default:
			c, cerr := clone(a)
			if cerr != nil {
				err = cerr
				return
			}
			out = append(out, c)
		}
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b identity.Actor) int {
		if c := strings.Compare(a.LastName, b.LastName); c != 0 {
			return c
		}
		return strings.Compare(a.FirstName, b.FirstName)
	})
	return out, nil
}

func (s *Store) CreateActor(ctx context.Context, actor identity.Actor, passwordHash string) (identity.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actors.get(actor.ID); ok {
		return identity.Actor{}, apperr.Validation(apperr.FieldIssue{Field: "id", Reason: "already exists"})
	}
	email := strings.ToLower(actor.Email)
	for _, row := range s.actors.rows {
		if strings.ToLower(row.actor.Email) == email {
			return identity.Actor{}, apperr.Validation(apperr.FieldIssue{Field: "email", Reason: "already in use"})
		}
	}
	if actor.ManagedDepartments == nil {
		actor.ManagedDepartments = []string{}
	}
	actor.UpdatedAt = actor.CreatedAt
	stored, err := clone(actor)
	if err != nil {
		return identity.Actor{}, err
	}
	s.actors.put(actor.ID, actorRow{actor: stored, passwordHash: passwordHash})
	return actor, nil
}

func (s *Store) UpdateActor(ctx context.Context, id string, fn func(*identity.Actor) error) (identity.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.actors.get(id)
	if !ok {
		return identity.Actor{}, apperr.NotFound("actor", id)
	}
	actor, err := clone(row.actor)
	if err != nil {
		return identity.Actor{}, err
	}
	if err := fn(&actor); err != nil {
		return identity.Actor{}, err
	}
	actor.UpdatedAt = time.Now().UTC()
	if actor.ManagedDepartments == nil {
		actor.ManagedDepartments = []string{}
	}
	stored, err := clone(actor)
	if err != nil {
		return identity.Actor{}, err
	}
	row.actor = stored
	s.actors.put(id, row)
	return actor, nil
}

func (s *Store) GetDepartment(ctx context.Context, id string) (identity.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.departments.get(id)
	if !ok {
		return identity.Department{}, apperr.NotFound("department", id)
	}
	return d, nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]identity.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]identity.Department, 0, len(s.departments.order))
	s.departments.each(func(d identity.Department) { out = append(out, d) })
	slices.SortStableFunc(out, func(a, b identity.Department) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) CreateDepartment(ctx context.Context, dept identity.Department) (identity.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.departments.get(dept.ID); ok {
		return identity.Department{}, apperr.Validation(apperr.FieldIssue{Field: "id", Reason: "already exists"})
	}
	s.departments.put(dept.ID, dept)
	return dept, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, id string, fn func(*identity.Department) error) (identity.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.departments.get(id)
	if !ok {
		return identity.Department{}, apperr.NotFound("department", id)
	}
	if err := fn(&d); err != nil {
		return identity.Department{}, err
	}
	s.departments.put(id, d)
	return d, nil
}
