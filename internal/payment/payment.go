package payment

import "context"

// Outcome is the payment collaborator's resolution. There is no partial
// or refund semantics here; a charge either went through or it did not.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeCancelled Outcome = "cancelled"
)

// Gateway is the single-shot payment collaborator. Amount is in whole
// currency units.
type Gateway interface {
	Initiate(ctx context.Context, amount int64) (Outcome, error)
}
