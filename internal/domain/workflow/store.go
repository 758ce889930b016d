package workflow

import (
	"context"
	"encoding/json"
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

const templateColumns = `id, name, description, frequency, status, sections_json, features_json, created_by, created_at, updated_at`

func scanTemplate(row pgx.Row) (Template, error) {
	var t Template
	var frequency, status string
	var sectionsJSON, featuresJSON []byte
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &frequency, &status, &sectionsJSON, &featuresJSON,
		&t.CreatedByID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Template{}, err
	}
	t.Frequency = Frequency(frequency)
	t.Status = TemplateStatus(status)
	if err := json.Unmarshal(sectionsJSON, &t.Sections); err != nil {
		return Template{}, errors.Wrap(err, "decode template sections")
	}
	if err := json.Unmarshal(featuresJSON, &t.Features); err != nil {
		return Template{}, errors.Wrap(err, "decode template features")
	}
	return t, nil
}

func (s *Store) CreateTemplate(ctx context.Context, t Template) (Template, error) {
	sectionsJSON, err := json.Marshal(t.Sections)
	if err != nil {
		return Template{}, err
	}
	featuresJSON, err := json.Marshal(t.Features)
	if err != nil {
		return Template{}, err
	}
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO review_templates (id, name, description, frequency, status, sections_json, features_json, created_by, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  `, t.ID, t.Name, t.Description, string(t.Frequency), string(t.Status), sectionsJSON, featuresJSON,
		t.CreatedByID, t.CreatedAt, t.UpdatedAt); err != nil {
		return Template{}, errors.Wrap(err, "insert template")
	}
	return t, nil
}

func (s *Store) GetTemplate(ctx context.Context, id string) (Template, error) {
	return loadTemplate(ctx, s.DB, id, "")
}

// loadTemplate reads one template; lock is empty, "FOR UPDATE" or "FOR SHARE".
func loadTemplate(ctx context.Context, db querier.Querier, id string, lock string) (Template, error) {
	query := "SELECT " + templateColumns + " FROM review_templates WHERE id = $1"
	if lock != "" {
		query += " " + lock
	}
	t, err := scanTemplate(db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, apperr.NotFound("template", id)
	}
	if err != nil {
		return Template{}, errors.Wrap(err, "load template")
	}
	return t, nil
}

func (s *Store) ListTemplates(ctx context.Context, filter TemplateFilter) ([]Template, error) {
	query := "SELECT " + templateColumns + " FROM review_templates"
	var args []any
	if filter.Status != "" {
		query += " WHERE status = $1"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}
	defer rows.Close()

	out := make([]Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan template")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTemplate(ctx context.Context, id string, fn func(t *Template, inUse bool) error) (Template, error) {
	var updated Template
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		t, err := loadTemplate(ctx, tx, id, "FOR UPDATE")
		if err != nil {
			return err
		}
		inUse, err := templateInUse(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&t, inUse); err != nil {
			return err
		}
		sectionsJSON, err := json.Marshal(t.Sections)
		if err != nil {
			return err
		}
		featuresJSON, err := json.Marshal(t.Features)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      UPDATE review_templates
      SET name = $1, description = $2, frequency = $3, status = $4, sections_json = $5, features_json = $6, updated_at = $7
      WHERE id = $8
    `, t.Name, t.Description, string(t.Frequency), string(t.Status), sectionsJSON, featuresJSON, t.UpdatedAt, id); err != nil {
			return errors.Wrap(err, "update template")
		}
		updated = t
		return nil
	})
	return updated, err
}

func (s *Store) DeleteTemplate(ctx context.Context, id string, guard func(t Template, inUse bool) error) error {
	return querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		t, err := loadTemplate(ctx, tx, id, "FOR UPDATE")
		if err != nil {
			return err
		}
		inUse, err := templateInUse(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := guard(t, inUse); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, "DELETE FROM review_templates WHERE id = $1", id)
		return errors.Wrap(err, "delete template")
	})
}

// templateInUse must run while the template row is locked. Starts take a
// share lock on the row, so none can commit between this check and the write.
func templateInUse(ctx context.Context, db querier.Querier, templateID string) (bool, error) {
	var count int
	if err := db.QueryRow(ctx, `
    SELECT COUNT(1) FROM review_assignments WHERE template_id = $1 AND status <> $2
  `, templateID, string(AssignmentPending)).Scan(&count); err != nil {
		return false, errors.Wrap(err, "count template assignments")
	}
	return count > 0, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
