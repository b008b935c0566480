package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jumparoo/bounce-bookings/internal/catalog"
	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/jumparoo/bounce-bookings/internal/notify"
	"github.com/jumparoo/bounce-bookings/internal/payment"
	"github.com/jumparoo/bounce-bookings/internal/utils"
	"github.com/jumparoo/bounce-bookings/pkg/logger"
)

// State identifies a position in the booking wizard.
type State string

const (
	StateSelectingProduct State = "selecting_product"
	StateEnteringDetails  State = "entering_details"
	StateConfirming       State = "confirming"

	// Suspension states: an external call is in flight and no user input
	// that could re-trigger it is accepted.
	StateAwaitingPayment State = "awaiting_payment"
	StateSubmitting      State = "submitting"

	// Terminal states.
	StateCompleted            State = "completed"
	StateCompletedWithWarning State = "completed_with_warning"
)

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCompletedWithWarning
}

func (s State) suspended() bool {
	return s == StateAwaitingPayment || s == StateSubmitting
}

// Sink is the persistence collaborator. The returned booking is the
// authoritative record; its id may differ from the submitted candidate
// if the store had to resolve a collision.
type Sink interface {
	Submit(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
}

type Outcome string

const (
	OutcomeCompleted            Outcome = "completed"
	OutcomeCompletedWithWarning Outcome = "completed_with_warning"
	OutcomePaymentCancelled     Outcome = "payment_cancelled"
)

type CheckoutResult struct {
	Outcome Outcome
	Booking *domain.Booking
	SaveErr error
}

type Deps struct {
	Catalog  catalog.Store
	Payments payment.Gateway
	Sink     Sink
	Notifier notify.Notifier

	SubmitTimeout  time.Duration
	PaymentTimeout time.Duration

	// Overridable in tests.
	Now   func() time.Time
	NewID func(now time.Time) string
}

func (d *Deps) setDefaults() {
	if d.SubmitTimeout <= 0 {
		d.SubmitTimeout = 10 * time.Second
	}
	if d.PaymentTimeout <= 0 {
		d.PaymentTimeout = 90 * time.Second
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = domain.NewBookingID
	}
	if d.Notifier == nil {
		d.Notifier = notify.LogNotifier{}
	}
}

// Controller drives one booking attempt through the wizard. It owns the
// draft exclusively for the attempt's lifetime and serializes all
// transitions.
type Controller struct {
	mu    sync.Mutex
	state State
	draft domain.Draft
	deps  Deps
}

func New(deps Deps) *Controller {
	deps.setDefaults()
	return &Controller{
		state: StateSelectingProduct,
		draft: domain.NewDraft(),
		deps:  deps,
	}
}

// Restore rebuilds a controller from a persisted snapshot. Suspension
// states are not resumable across restarts; they fall back to the
// confirmation step since no charge was recorded for them.
func Restore(state State, draft domain.Draft, deps Deps) *Controller {
	deps.setDefaults()
	if state.suspended() {
		state = StateConfirming
	}
	if state == "" {
		state = StateSelectingProduct
	}
	if draft.DurationID == "" {
		draft.DurationID = domain.Duration4Hours
	}
	return &Controller{state: state, draft: draft, deps: deps}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Draft() domain.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Update applies a partial edit to the draft. Edits are only accepted
// while the wizard is on an input step.
func (c *Controller) Update(patch domain.DraftPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.suspended() {
		return domain.ErrFlowBusy
	}
	if c.state.Terminal() {
		return domain.ErrInvalidTransition
	}

	c.draft.Apply(patch)
	return nil
}

// Next advances one step forward. A guard failure blocks the transition
// without mutating anything; calling it again with an unchanged draft
// yields the same result.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateSelectingProduct:
		if !c.draft.HasProductAndDate() {
			return domain.ErrIncompleteStep
		}
		c.state = StateEnteringDetails
	case StateEnteringDetails:
		if !c.draft.HasSchedule() {
			return domain.ErrIncompleteStep
		}
		c.state = StateConfirming
	case StateAwaitingPayment, StateSubmitting:
		return domain.ErrFlowBusy
	default:
		return domain.ErrInvalidTransition
	}
	return nil
}

// Back steps backward without clearing any entered fields.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateEnteringDetails:
		c.state = StateSelectingProduct
	case StateConfirming:
		c.state = StateEnteringDetails
	case StateAwaitingPayment, StateSubmitting:
		return domain.ErrFlowBusy
	default:
		return domain.ErrInvalidTransition
	}
	return nil
}

// Reset discards the draft and starts a fresh attempt.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateSelectingProduct
	c.draft = domain.NewDraft()
}

// Checkout records the contact info, collects payment and submits the
// finalized booking. Only one checkout may be in flight per draft; a
// concurrent call gets ErrFlowBusy.
func (c *Controller) Checkout(ctx context.Context, contact domain.Contact) (*CheckoutResult, error) {
	contact = domain.Contact{
		Name:  utils.NormalizeString(contact.Name),
		Phone: utils.NormalizePhone(contact.Phone),
		Email: utils.NormalizeEmail(contact.Email),
	}

	c.mu.Lock()
	switch {
	case c.state.suspended():
		c.mu.Unlock()
		return nil, domain.ErrFlowBusy
	case c.state != StateConfirming:
		c.mu.Unlock()
		return nil, domain.ErrInvalidTransition
	}

	c.draft.Contact = contact
	if !c.draft.HasContact() {
		c.mu.Unlock()
		return nil, domain.ErrIncompleteStep
	}

	// The amount is derived fresh from the duration table at the moment
	// of checkout, never from a value computed at an earlier step.
	dur, ok := domain.ResolveDuration(c.draft.DurationID)
	if !ok {
		c.mu.Unlock()
		return nil, domain.ErrUnknownDuration
	}
	amount := dur.Price

	c.state = StateAwaitingPayment
	c.mu.Unlock()

	payCtx, cancel := context.WithTimeout(ctx, c.deps.PaymentTimeout)
	outcome, err := c.deps.Payments.Initiate(payCtx, amount)
	cancel()

	if err != nil || outcome != payment.OutcomeSucceeded {
		if err != nil {
			logger.WarnContext(ctx, "Payment not completed, returning to confirmation", "error", err)
		}
		c.mu.Lock()
		c.state = StateConfirming
		c.mu.Unlock()
		return &CheckoutResult{Outcome: OutcomePaymentCancelled}, nil
	}

	c.mu.Lock()
	c.state = StateSubmitting
	draft := c.draft
	c.mu.Unlock()

	result := c.finalize(ctx, draft)

	c.mu.Lock()
	if result.Outcome == OutcomeCompleted {
		c.state = StateCompleted
	} else {
		c.state = StateCompletedWithWarning
	}
	c.draft = domain.NewDraft()
	c.mu.Unlock()

	return result, nil
}

// finalize builds the booking record from a fully-validated snapshot and
// hands it to the persistence collaborator. Local failures (bad date,
// catalog miss, unknown duration, incomplete record) never reach the
// sink; they route to the warning outcome because the user has already
// been charged.
func (c *Controller) finalize(ctx context.Context, draft domain.Draft) *CheckoutResult {
	date, err := draft.ParseDate()
	if err != nil {
		return c.saveFailed(ctx, nil, err)
	}

	dur, ok := domain.ResolveDuration(draft.DurationID)
	if !ok {
		return c.saveFailed(ctx, nil, domain.ErrUnknownDuration)
	}

	product, err := c.deps.Catalog.Get(ctx, draft.ProductRef)
	if err != nil {
		return c.saveFailed(ctx, nil, fmt.Errorf("resolve product: %w", err))
	}
	if product == nil {
		return c.saveFailed(ctx, nil, domain.ErrProductNotFound)
	}

	booking := &domain.Booking{
		BookingID:   c.deps.NewID(c.deps.Now()),
		Customer:    draft.Contact,
		Product:     domain.ProductSnapshot{ID: product.Ref, Name: product.Name},
		Date:        date,
		Time:        draft.Time,
		Duration:    dur,
		Address:     draft.Address,
		Status:      domain.StatusConfirmed,
		TotalAmount: dur.Price,
	}
	if err := booking.Validate(); err != nil {
		return c.saveFailed(ctx, nil, err)
	}

	subCtx, cancel := context.WithTimeout(ctx, c.deps.SubmitTimeout)
	defer cancel()

	saved, err := c.deps.Sink.Submit(subCtx, booking)
	if err != nil {
		return c.saveFailed(ctx, booking, err)
	}

	logger.InfoContext(ctx, "Booking persisted",
		"booking_id", saved.BookingID,
		"product", saved.Product.Name,
		"total_amount", saved.TotalAmount,
	)
	c.deps.Notifier.Emit(ctx, "Payment successful! Your booking is confirmed.", notify.SeveritySuccess)

	return &CheckoutResult{Outcome: OutcomeCompleted, Booking: saved}
}

// saveFailed handles the degraded-success terminal: the charge went
// through, so the user still sees a confirmed booking plus a warning and
// a follow-up notice deferring to out-of-band reconciliation.
func (c *Controller) saveFailed(ctx context.Context, booking *domain.Booking, cause error) *CheckoutResult {
	logger.ErrorContext(ctx, "Booking submission failed after payment", "error", cause)

	c.deps.Notifier.Emit(ctx, "Booking confirmed but failed to save to database: "+cause.Error(), notify.SeverityError)
	c.deps.Notifier.Emit(ctx, "Please contact support with your booking details.", notify.SeverityInfo)

	return &CheckoutResult{Outcome: OutcomeCompletedWithWarning, Booking: booking, SaveErr: cause}
}
