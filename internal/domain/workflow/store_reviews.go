package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/platform/querier"
)

const reviewColumns = `id, employee_id, reviewer_id, COALESCE(template_id, ''), COALESCE(assignment_id, ''), review_type,
  period_start, period_end, status, sections_json, ratings_json, feedback_json, goal_ids, kpis_json,
  acknowledgement_json, features_json, is_ongoing, next_checkin_date, submitted_at, completed_at, created_at, updated_at`

// reviewDocs holds the jsonb columns of a review row.
type reviewDocs struct {
	sections, ratings, feedback, kpis, acknowledgement, features []byte
}

func encodeReview(r Review) (reviewDocs, error) {
	var d reviewDocs
	var err error
	if d.sections, err = json.Marshal(r.Sections); err != nil {
		return d, err
	}
	if d.ratings, err = json.Marshal(r.Ratings); err != nil {
		return d, err
	}
	if d.feedback, err = json.Marshal(r.Feedback); err != nil {
		return d, err
	}
	if d.kpis, err = json.Marshal(r.KPIs); err != nil {
		return d, err
	}
	if r.Acknowledgement != nil {
		if d.acknowledgement, err = json.Marshal(r.Acknowledgement); err != nil {
			return d, err
		}
	}
	if d.features, err = json.Marshal(r.Features); err != nil {
		return d, err
	}
	return d, nil
}

func scanReview(row pgx.Row) (Review, error) {
	var r Review
	var status string
	var d reviewDocs
	if err := row.Scan(&r.ID, &r.EmployeeID, &r.ReviewerID, &r.TemplateID, &r.AssignmentID, &r.ReviewType,
		&r.ReviewPeriod.Start, &r.ReviewPeriod.End, &status, &d.sections, &d.ratings, &d.feedback, &r.GoalIDs,
		&d.kpis, &d.acknowledgement, &d.features, &r.IsOngoing, &r.NextCheckInDate, &r.SubmittedAt, &r.CompletedAt,
		&r.CreatedAt, &r.UpdatedAt); err != nil {
		return Review{}, err
	}
	r.Status = ReviewStatus(status)
	decode := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"sections", d.sections, &r.Sections},
		{"ratings", d.ratings, &r.Ratings},
		{"feedback", d.feedback, &r.Feedback},
		{"kpis", d.kpis, &r.KPIs},
		{"features", d.features, &r.Features},
	}
	for _, item := range decode {
		if len(item.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(item.raw, item.dst); err != nil {
			return Review{}, errors.Wrapf(err, "decode review %s", item.name)
		}
	}
	if len(d.acknowledgement) > 0 && string(d.acknowledgement) != "null" {
		var ack Acknowledgement
		if err := json.Unmarshal(d.acknowledgement, &ack); err != nil {
			return Review{}, errors.Wrap(err, "decode review acknowledgement")
		}
		r.Acknowledgement = &ack
	}
	if r.GoalIDs == nil {
		r.GoalIDs = []string{}
	}
	if r.KPIs == nil {
		r.KPIs = []ReviewKPI{}
	}
	return r, nil
}

func insertReview(ctx context.Context, db querier.Querier, r Review) error {
	d, err := encodeReview(r)
	if err != nil {
		return err
	}
	goalIDs := r.GoalIDs
	if goalIDs == nil {
		goalIDs = []string{}
	}
	if _, err := db.Exec(ctx, `
    INSERT INTO reviews (id, employee_id, reviewer_id, template_id, assignment_id, review_type, period_start, period_end,
                         status, sections_json, ratings_json, feedback_json, goal_ids, kpis_json, acknowledgement_json,
                         features_json, is_ongoing, next_checkin_date, submitted_at, completed_at, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
  `, r.ID, r.EmployeeID, r.ReviewerID, querier.NullIfEmpty(r.TemplateID), querier.NullIfEmpty(r.AssignmentID),
		r.ReviewType, r.ReviewPeriod.Start, r.ReviewPeriod.End, string(r.Status), d.sections, d.ratings, d.feedback,
		goalIDs, d.kpis, d.acknowledgement, d.features, r.IsOngoing, r.NextCheckInDate, r.SubmittedAt, r.CompletedAt,
		r.CreatedAt, r.UpdatedAt); err != nil {
		return errors.Wrap(err, "insert review")
	}
	return insertSnapshots(ctx, db, r.ID, r.ProgressSnapshots, 0)
}

func insertSnapshots(ctx context.Context, db querier.Querier, reviewID string, snapshots []Snapshot, from int) error {
	for i := from; i < len(snapshots); i++ {
		payload, err := json.Marshal(snapshots[i])
		if err != nil {
			return err
		}
		if _, err := db.Exec(ctx, `
      INSERT INTO review_snapshots (review_id, position, taken_at, payload_json)
      VALUES ($1, $2, $3, $4)
    `, reviewID, i, snapshots[i].Date, payload); err != nil {
			return errors.Wrap(err, "insert review snapshot")
		}
	}
	return nil
}

func loadSnapshots(ctx context.Context, db querier.Querier, reviewID string) ([]Snapshot, error) {
	rows, err := db.Query(ctx, `
    SELECT payload_json FROM review_snapshots WHERE review_id = $1 ORDER BY position
  `, reviewID)
	if err != nil {
		return nil, errors.Wrap(err, "list review snapshots")
	}
	defer rows.Close()

	out := make([]Snapshot, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Wrap(err, "scan review snapshot")
		}
		var snap Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, errors.Wrap(err, "decode review snapshot")
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *Store) CreateReview(ctx context.Context, r Review) (Review, error) {
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		return insertReview(ctx, tx, r)
	})
	if err != nil {
		return Review{}, err
	}
	return r, nil
}

func (s *Store) GetReview(ctx context.Context, id string) (Review, error) {
	return loadReview(ctx, s.DB, id, false)
}

func loadReview(ctx context.Context, db querier.Querier, id string, lock bool) (Review, error) {
	query := "SELECT " + reviewColumns + " FROM reviews WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	r, err := scanReview(db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, apperr.NotFound("review", id)
	}
	if err != nil {
		return Review{}, errors.Wrap(err, "load review")
	}
	r.ProgressSnapshots, err = loadSnapshots(ctx, db, id)
	if err != nil {
		return Review{}, err
	}
	return r, nil
}

func (s *Store) ListReviews(ctx context.Context, filter ReviewFilter) ([]Review, error) {
	query := "SELECT " + reviewColumns + " FROM reviews WHERE 1=1"
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		query += fmt.Sprintf(" AND %s = $%d", column, len(args))
	}
	add("employee_id", filter.EmployeeID)
	add("reviewer_id", filter.ReviewerID)
	add("status", string(filter.Status))
	add("review_type", filter.ReviewType)
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}
	out := make([]Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan review")
		}
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].ProgressSnapshots, err = loadSnapshots(ctx, s.DB, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) UpdateReview(ctx context.Context, id string, fn func(*Review) error) (Review, error) {
	var updated Review
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		r, err := loadReview(ctx, tx, id, true)
		if err != nil {
			return err
		}
		existing := len(r.ProgressSnapshots)
		if err := fn(&r); err != nil {
			return err
		}
		if len(r.ProgressSnapshots) < existing {
			return errors.New("review snapshots are append-only")
		}
		d, err := encodeReview(r)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      UPDATE reviews
      SET status = $1, sections_json = $2, ratings_json = $3, feedback_json = $4, goal_ids = $5, kpis_json = $6,
          acknowledgement_json = $7, next_checkin_date = $8, submitted_at = $9, completed_at = $10, updated_at = $11
      WHERE id = $12
    `, string(r.Status), d.sections, d.ratings, d.feedback, r.GoalIDs, d.kpis, d.acknowledgement, r.NextCheckInDate,
			r.SubmittedAt, r.CompletedAt, r.UpdatedAt, id); err != nil {
			return errors.Wrap(err, "update review")
		}
		if err := insertSnapshots(ctx, tx, id, r.ProgressSnapshots, existing); err != nil {
			return err
		}
		updated = r
		return nil
	})
	return updated, err
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM reviews WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "delete review")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("review", id)
	}
	return nil
}
