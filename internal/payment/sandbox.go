package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/jumparoo/bounce-bookings/pkg/logger"
)

// SandboxGateway approves every positive charge after a short delay.
// Used for local runs when no Stripe key is configured.
type SandboxGateway struct {
	Delay time.Duration
}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{Delay: 150 * time.Millisecond}
}

func (g *SandboxGateway) Initiate(ctx context.Context, amount int64) (Outcome, error) {
	if amount <= 0 {
		return OutcomeCancelled, fmt.Errorf("amount must be positive, got %d", amount)
	}

	select {
	case <-time.After(g.Delay):
	case <-ctx.Done():
		return OutcomeCancelled, ctx.Err()
	}

	logger.InfoContext(ctx, "Sandbox payment approved", "amount", amount)
	return OutcomeSucceeded, nil
}

var _ Gateway = (*SandboxGateway)(nil)
