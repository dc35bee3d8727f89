package audit

import (
	"context"

	"github.com/kashguard/go-sigauth/internal/util"
)

// Event is one signing or verification outcome worth keeping a trace of.
// Reason carries the internal rejection code; it is for logs only and is
// never reflected back to API callers.
type Event struct {
	EventType string
	KeyID     string
	Operation string
	Result    string
	Reason    string
	Policy    string
}

// Logger records audit events.
type Logger interface {
	LogEvent(ctx context.Context, event *Event)
}

type logger struct{}

// NewLogger returns a Logger that emits structured audit records through
// the request-scoped zerolog logger.
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewLogger() Logger {
	return &logger{}
}

func (l *logger) LogEvent(ctx context.Context, event *Event) {
	log := util.LogFromContext(ctx).With().
		Str("audit_event", event.EventType).
		Str("operation", event.Operation).
		Str("result", event.Result).
		Logger()

	if event.KeyID != "" {
		log = log.With().Str("key_id", event.KeyID).Logger()
	}
	if event.Policy != "" {
		log = log.With().Str("policy", event.Policy).Logger()
	}
	if event.Reason != "" {
		log = log.With().Str("reason", event.Reason).Logger()
	}

	log.Info().Msg("audit")
}
