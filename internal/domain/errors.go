package domain

import "errors"

var (
	// ErrIncompleteStep blocks a forward transition whose guard is not
	// satisfied. The UI treats this silently (forward action disabled).
	ErrIncompleteStep = errors.New("current step is incomplete")

	// ErrInvalidTransition rejects a transition not defined for the
	// current state.
	ErrInvalidTransition = errors.New("transition not allowed from current state")

	// ErrFlowBusy rejects input while a payment or submission is in
	// flight. At most one external call per draft.
	ErrFlowBusy = errors.New("booking flow is waiting on an external call")

	ErrInvalidDate       = errors.New("invalid date format")
	ErrUnknownDuration   = errors.New("unknown duration option")
	ErrProductNotFound   = errors.New("product not found")
	ErrIncompleteBooking = errors.New("booking record is incomplete")
	ErrSessionNotFound   = errors.New("booking session not found")
)
