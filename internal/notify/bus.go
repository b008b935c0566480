package notify

import (
	"context"

	"github.com/jumparoo/bounce-bookings/pkg/events"
	"github.com/jumparoo/bounce-bookings/pkg/logger"
)

// BusNotifier publishes toast notifications on the event bus so the
// frontend (or any subscriber) can surface them.
type BusNotifier struct {
	bus events.Publisher
}

func NewBusNotifier(bus events.Publisher) *BusNotifier {
	return &BusNotifier{bus: bus}
}

func (n *BusNotifier) Emit(ctx context.Context, message string, severity Severity) {
	event := events.ToastEvent{
		Message:  message,
		Severity: string(severity),
	}
	if sid := ctx.Value(logger.SessionIDKey); sid != nil {
		if s, ok := sid.(string); ok {
			event.SessionID = s
		}
	}

	if err := n.bus.Publish(ctx, events.NotifyToast, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish toast notification", "error", err)
	}
}

var _ Notifier = (*BusNotifier)(nil)
