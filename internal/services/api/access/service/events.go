package service

import (
	"context"
	"time"

	"enrollgate/internal/platform/logger"
	"enrollgate/internal/platform/store"
	"enrollgate/internal/services/api/access/domain"
	"enrollgate/internal/services/api/access/repo"
)

// EventSink receives one event per committed mutation
// Record must not fail the caller; the audit stream is best effort
type EventSink interface {
	Record(ctx context.Context, ev domain.Event)
}

type nopSink struct{}

func (nopSink) Record(context.Context, domain.Event) {}

const sinkTimeout = 2 * time.Second

// ClickhouseSink appends events to the access_request_events table
type ClickhouseSink struct {
	ch store.Clickhouse
}

// NewClickhouseSink returns a sink over ch, or a no-op sink when ch is nil
func NewClickhouseSink(ch store.Clickhouse) EventSink {
	if ch == nil {
		return nopSink{}
	}
	return &ClickhouseSink{ch: ch}
}

// Record inserts ev; failures are logged at warn and dropped
func (c *ClickhouseSink) Record(ctx context.Context, ev domain.Event) {
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()

	row := []any{
		ev.At.UTC(),
		string(ev.Action),
		ev.RequestID,
		ev.LearnerID,
		ev.ContentUnitID,
		string(ev.ContentKind),
		ev.Actor,
		ev.Reason,
	}
	if err := c.ch.Insert(ictx, repo.EventsTable, [][]any{row}); err != nil {
		logger.C(ctx).Warn().Err(err).
			Str("action", string(ev.Action)).
			Str("request_id", ev.RequestID).
			Msg("access event not recorded")
	}
}
