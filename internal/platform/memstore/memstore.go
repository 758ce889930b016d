// Package memstore keeps every aggregate in process memory. It satisfies the
// same store interfaces as the Postgres stores and backs tests and the
// memory store driver.
package memstore

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"hrperf/internal/domain/audit"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/kpi"
	"hrperf/internal/domain/notifications"
	"hrperf/internal/domain/progress"
	"hrperf/internal/domain/workflow"
	"hrperf/internal/platform/jobs"
)

type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
	return true
}

// each visits rows in insertion order.
func (t *table[T]) each(fn func(T)) {
	for _, id := range t.order {
		fn(t.rows[id])
	}
}

type Store struct {
	mu sync.Mutex

	actors      *table[actorRow]
	departments *table[identity.Department]
	goals       *table[progress.Goal]
	kpis        *table[kpi.KPI]
	templates   *table[workflow.Template]
	assignments *table[workflow.Assignment]
	reviews     *table[workflow.Review]
	inbox       *table[notifications.Notification]
	events      []audit.Event
	runs        *table[jobs.Run]
}

type actorRow struct {
	actor        identity.Actor
	passwordHash string
}

func New() *Store {
	return &Store{
		actors:      newTable[actorRow](),
		departments: newTable[identity.Department](),
		goals:       newTable[progress.Goal](),
		kpis:        newTable[kpi.KPI](),
		templates:   newTable[workflow.Template](),
		assignments: newTable[workflow.Assignment](),
		reviews:     newTable[workflow.Review](),
		inbox:       newTable[notifications.Notification](),
		runs:        newTable[jobs.Run](),
	}
}

// clone deep-copies v through its JSON form so callers never share state with
// the store. Numbers held in untyped fields come back as float64.
func clone[T any](v T) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, errors.Wrap(err, "clone")
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errors.Wrap(err, "clone")
	}
	return out, nil
}

var (
	_ identity.StoreAPI      = (*Store)(nil)
	_ progress.StoreAPI      = (*Store)(nil)
	_ kpi.StoreAPI           = (*Store)(nil)
	_ workflow.StoreAPI      = (*Store)(nil)
	_ notifications.StoreAPI = (*Store)(nil)
	_ audit.StoreAPI         = (*Store)(nil)
	_ jobs.RunStore          = (*Store)(nil)
)
