package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const actorColumns = `id, email, first_name, last_name, role, COALESCE(department_id, ''),
  managed_departments, COALESCE(managed_by, ''), active, created_at, updated_at`

func scanActor(row pgx.Row) (Actor, error) {
	var a Actor
	var role string
	if err := row.Scan(&a.ID, &a.Email, &a.FirstName, &a.LastName, &role, &a.DepartmentID,
		&a.ManagedDepartments, &a.ManagedBy, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Actor{}, err
	}
	a.Role = Role(role)
	return a, nil
}

func (s *Store) GetActor(ctx context.Context, id string) (Actor, error) {
	return getActor(ctx, s.DB, id, false)
}

func getActor(ctx context.Context, db querier.Querier, id string, lock bool) (Actor, error) {
	query := "SELECT " + actorColumns + " FROM actors WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	actor, err := scanActor(db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Actor{}, apperr.NotFound("actor", id)
	}
	if err != nil {
		return Actor{}, errors.Wrap(err, "load actor")
	}
	return actor, nil
}

func (s *Store) FindCredentials(ctx context.Context, email string) (Credentials, error) {
	var creds Credentials
	err := s.DB.QueryRow(ctx, "SELECT id, password_hash FROM actors WHERE lower(email) = $1", email).
		Scan(&creds.ActorID, &creds.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, apperr.NotFound("actor", email)
	}
	if err != nil {
		return Credentials{}, errors.Wrap(err, "load credentials")
	}
	return creds, nil
}

func (s *Store) ListActors(ctx context.Context, filter ActorFilter) ([]Actor, error) {
	query := "SELECT " + actorColumns + " FROM actors WHERE 1=1"
	var args []any
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		query += fmt.Sprintf(" AND department_id = $%d", len(args))
	}
	if filter.ManagedBy != "" {
		args = append(args, filter.ManagedBy)
		query += fmt.Sprintf(" AND managed_by = $%d", len(args))
	}
	if filter.ActiveOnly {
		query += " AND active"
	}
	query += " ORDER BY last_name, first_name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list actors")
	}
	defer rows.Close()

	actors := make([]Actor, 0)
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan actor")
		}
		actors = append(actors, actor)
	}
	return actors, rows.Err()
}

func (s *Store) CreateActor(ctx context.Context, actor Actor, passwordHash string) (Actor, error) {
	if actor.ManagedDepartments == nil {
		actor.ManagedDepartments = []string{}
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO actors (id, email, password_hash, first_name, last_name, role, department_id, managed_departments, managed_by, active, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
  `, actor.ID, actor.Email, passwordHash, actor.FirstName, actor.LastName, string(actor.Role),
		querier.NullIfEmpty(actor.DepartmentID), actor.ManagedDepartments, querier.NullIfEmpty(actor.ManagedBy),
		actor.Active, actor.CreatedAt)
	if err != nil {
		return Actor{}, errors.Wrap(err, "insert actor")
	}
	actor.UpdatedAt = actor.CreatedAt
	return actor, nil
}

func (s *Store) UpdateActor(ctx context.Context, id string, fn func(*Actor) error) (Actor, error) {
	var updated Actor
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		actor, err := getActor(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(&actor); err != nil {
			return err
		}
		actor.UpdatedAt = time.Now().UTC()
		if actor.ManagedDepartments == nil {
			actor.ManagedDepartments = []string{}
		}
		_, err = tx.Exec(ctx, `
      UPDATE actors
      SET first_name = $1, last_name = $2, role = $3, department_id = $4, managed_departments = $5,
          managed_by = $6, active = $7, updated_at = $8
      WHERE id = $9
    `, actor.FirstName, actor.LastName, string(actor.Role), querier.NullIfEmpty(actor.DepartmentID),
			actor.ManagedDepartments, querier.NullIfEmpty(actor.ManagedBy), actor.Active, actor.UpdatedAt, id)
		if err != nil {
			return errors.Wrap(err, "update actor")
		}
		updated = actor
		return nil
	})
	return updated, err
}

func (s *Store) GetDepartment(ctx context.Context, id string) (Department, error) {
	return getDepartment(ctx, s.DB, id, false)
}

func getDepartment(ctx context.Context, db querier.Querier, id string, lock bool) (Department, error) {
	query := "SELECT id, name, description, COALESCE(head_id, ''), created_at FROM departments WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	var d Department
	err := db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.Description, &d.HeadID, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, apperr.NotFound("department", id)
	}
	if err != nil {
		return Department{}, errors.Wrap(err, "load department")
	}
	return d, nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, description, COALESCE(head_id, ''), created_at FROM departments ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "list departments")
	}
	defer rows.Close()

	out := make([]Department, 0)
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.HeadID, &d.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan department")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, dept Department) (Department, error) {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO departments (id, name, description, head_id, created_at)
    VALUES ($1,$2,$3,$4,$5)
  `, dept.ID, dept.Name, dept.Description, querier.NullIfEmpty(dept.HeadID), dept.CreatedAt)
	if err != nil {
		return Department{}, errors.Wrap(err, "insert department")
	}
	return dept, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, id string, fn func(*Department) error) (Department, error) {
	var updated Department
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		dept, err := getDepartment(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(&dept); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      UPDATE departments SET name = $1, description = $2, head_id = $3 WHERE id = $4
    `, dept.Name, dept.Description, querier.NullIfEmpty(dept.HeadID), id); err != nil {
			return errors.Wrap(err, "update department")
		}
		updated = dept
		return nil
	})
	return updated, err
}
