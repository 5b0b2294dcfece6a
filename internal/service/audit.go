package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/attaboy/strokecheck/internal/domain"
	"github.com/attaboy/strokecheck/internal/infra"
)

const auditTimeout = 2 * time.Second

// EventPublisher delivers audit events. Implemented by infra.AuditPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.AuditEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.AuditEvent) error { return nil }

// auditor publishes events best-effort. A failed publish never fails the
// user's request; it is logged and counted.
type auditor struct {
	events  EventPublisher
	metrics *infra.Metrics
	logger  *slog.Logger
}

func (a auditor) record(ctx context.Context, evt domain.AuditEvent) {
	if a.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	if err := a.events.Publish(ctx, evt); err != nil {
		a.metrics.AuditPublishFails.Inc()
		a.logger.Warn("audit publish failed",
			"event_type", evt.EventType,
			"event_id", evt.EventID,
			"error", err,
		)
	}
}
