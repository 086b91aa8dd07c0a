// Package audit records security-relevant events. Sinks are write-only;
// nothing in the server reads events back.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/config"
	"github.com/google/uuid"
)

// Kind identifies what happened.
type Kind string

const (
	KindSecurityAnswerMismatch Kind = "SecurityAnswerMismatch"
)

// Event never carries secrets, answers or hashes.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	UserName  string    `json:"username"`
	AccountID string    `json:"accountId,omitempty"`
	ItemID    string    `json:"itemId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps an event with a fresh id and the current UTC time.
func NewEvent(kind Kind, userName, accountID, itemID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		UserName:  userName,
		AccountID: accountID,
		ItemID:    itemID,
		Timestamp: time.Now().UTC(),
	}
}

type Sink interface {
	Record(ctx context.Context, e Event) error
	Close() error
}

// NewSink builds the sink selected by cfg.AuditType.
func NewSink(ctx context.Context, cfg *config.Config, logger logging.Logger) (Sink, error) {
	switch cfg.AuditType {
	case "log":
		return NewLogSink(logger), nil
	case "file":
		return NewFileSink(cfg.AuditFilePath)
	case "s3":
		return NewS3Sink(ctx, cfg)
	case "none", "":
		return NoOp{}, nil
	default:
		return nil, fmt.Errorf("unknown audit type %q", cfg.AuditType)
	}
}
