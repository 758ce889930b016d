package memstore

import (
	"context"
	"slices"
	"strings"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/kpi"
)

func (s *Store) CreateKPI(ctx context.Context, k kpi.KPI) (kpi.KPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := clone(k)
	if err != nil {
		return kpi.KPI{}, err
	}
	s.kpis.put(k.ID, stored)
	return k, nil
}

func (s *Store) GetKPI(ctx context.Context, id string) (kpi.KPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.kpis.get(id)
	if !ok {
		return kpi.KPI{}, apperr.NotFound("kpi", id)
	}
	return clone(k)
}

func (s *Store) ListKPIs(ctx context.Context, filter kpi.Filter) ([]kpi.KPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]kpi.KPI, 0)
	for _, id := range s.kpis.order {
		k := s.kpis.rows[id]
		if !kpiScopeMatches(k, filter) {
			continue
		}
		if filter.Category != "" && k.Category != filter.Category {
			continue
		}
		if filter.Status != "" && k.Status != filter.Status {
			continue
		}
		c, err := clone(k)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b kpi.KPI) int {
		if c := strings.Compare(string(a.Category), string(b.Category)); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out, nil
}

func kpiScopeMatches(k kpi.KPI, filter kpi.Filter) bool {
	switch {
	case filter.DepartmentID != "" && filter.IncludeGlobal:
		return k.DepartmentID == filter.DepartmentID || k.IsGlobal
	case filter.DepartmentID != "":
		return k.DepartmentID == filter.DepartmentID
	case filter.IncludeGlobal:
		return k.IsGlobal
	default:
		return true
	}
}

func (s *Store) UpdateKPI(ctx context.Context, id string, fn func(*kpi.KPI) error) (kpi.KPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.kpis.get(id)
	if !ok {
		return kpi.KPI{}, apperr.NotFound("kpi", id)
	}
	k, err := clone(current)
	if err != nil {
		return kpi.KPI{}, err
	}
	if err := fn(&k); err != nil {
		return kpi.KPI{}, err
	}
	stored, err := clone(k)
	if err != nil {
		return kpi.KPI{}, err
	}
	s.kpis.put(id, stored)
	return k, nil
}

func (s *Store) DeleteKPI(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.kpis.remove(id) {
		return apperr.NotFound("kpi", id)
	}
	return nil
}
