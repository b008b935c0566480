package notify

import (
	"context"

	"github.com/jumparoo/bounce-bookings/pkg/logger"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Notifier is the fire-and-forget user feedback sink. Emission failures
// never affect flow correctness.
type Notifier interface {
	Emit(ctx context.Context, message string, severity Severity)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct{}

func (LogNotifier) Emit(ctx context.Context, message string, severity Severity) {
	logger.InfoContext(ctx, "User notification", "message", message, "severity", string(severity))
}

// Multi fans a notification out to several sinks.
type Multi []Notifier

func (m Multi) Emit(ctx context.Context, message string, severity Severity) {
	for _, n := range m {
		n.Emit(ctx, message, severity)
	}
}
