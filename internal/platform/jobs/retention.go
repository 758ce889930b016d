package jobs

import (
	"context"
	"time"
)

const JobRetention = "retention"

type NotificationPurger interface {
	PurgeReadNotifications(ctx context.Context, before time.Time) (int64, error)
}

type AuditPurger interface {
	PurgeAuditEvents(ctx context.Context, before time.Time) (int64, error)
}

// Retention deletes read notifications and audit events older than their
// configured windows. A zero window keeps that category forever.
type Retention struct {
	notifications NotificationPurger
	audit         AuditPurger
	Notifications time.Duration
	Audit         time.Duration
	now           func() time.Time
}

func NewRetention(notifications NotificationPurger, audit AuditPurger, notificationsAfter, auditAfter time.Duration) *Retention {
	return &Retention{
		notifications: notifications,
		audit:         audit,
		Notifications: notificationsAfter,
		Audit:         auditAfter,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (r *Retention) Run(ctx context.Context) (any, error) {
	at := r.now()
	details := map[string]any{"notifications": int64(0), "auditEvents": int64(0)}
	if r.Notifications > 0 {
		n, err := r.notifications.PurgeReadNotifications(ctx, at.Add(-r.Notifications))
		if err != nil {
			return details, err
		}
		details["notifications"] = n
	}
	if r.Audit > 0 {
		n, err := r.audit.PurgeAuditEvents(ctx, at.Add(-r.Audit))
		if err != nil {
			return details, err
		}
		details["auditEvents"] = n
	}
	return details, nil
}
