package kpi

import "context"

type StoreAPI interface {
	CreateKPI(ctx context.Context, k KPI) (KPI, error)
	GetKPI(ctx context.Context, id string) (KPI, error)
	ListKPIs(ctx context.Context, filter Filter) ([]KPI, error)
	UpdateKPI(ctx context.Context, id string, fn func(*KPI) error) (KPI, error)
	DeleteKPI(ctx context.Context, id string) error
}
