package cmd

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/smartexpense/internal/core/events"
)

// subscribeEventLog writes every ledger event to the log at debug level.
func subscribeEventLog(bus *events.EventBus, logger *slog.Logger) {
	handler := func(ctx context.Context, event events.Event) error {
		logger.Debug("ledger event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	for _, eventType := range []string{
		events.EventTypeTransactionRecorded,
		events.EventTypeAdmissionRejected,
		events.EventTypeBudgetUpdated,
	} {
		bus.Subscribe(eventType, handler)
	}
}
