package audit

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/logging"
)

// LogSink writes events to the structured application log at warn level.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.With("module", "audit")}
}

func (s *LogSink) Record(ctx context.Context, e Event) error {
	s.logger.Warn(ctx, "audit event",
		"event_id", e.ID,
		"kind", string(e.Kind),
		"username", e.UserName,
		"account_id", e.AccountID,
		"item_id", e.ItemID,
		"timestamp", e.Timestamp,
	)
	return nil
}

func (s *LogSink) Close() error { return nil }

// NoOp discards events.
type NoOp struct{}

func (NoOp) Record(context.Context, Event) error { return nil }
func (NoOp) Close() error                        { return nil }
