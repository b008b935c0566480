package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/jumparoo/bounce-bookings/internal/flow"
	"github.com/jumparoo/bounce-bookings/internal/http/response"
	"github.com/jumparoo/bounce-bookings/pkg/events"
	"github.com/jumparoo/bounce-bookings/pkg/logger"
)

type flowStateResponse struct {
	SessionID string       `json:"session_id"`
	State     flow.State   `json:"state"`
	Draft     domain.Draft `json:"draft"`
}

type checkoutRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type checkoutResponse struct {
	SessionID string          `json:"session_id"`
	State     flow.State      `json:"state"`
	Outcome   flow.Outcome    `json:"outcome"`
	Booking   *domain.Booking `json:"booking,omitempty"`
}

// StartFlow opens a new wizard session.
func (h *Handlers) StartFlow(w http.ResponseWriter, r *http.Request) {
	id, c, err := h.sessions.Start(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to start booking session", "error", err)
		response.InternalError(w, "Failed to start booking session")
		return
	}

	writeJSON(w, http.StatusCreated, flowStateResponse{
		SessionID: id,
		State:     c.State(),
		Draft:     c.Draft(),
	})
}

// GetFlow returns the wizard's current state and draft.
func (h *Handlers) GetFlow(w http.ResponseWriter, r *http.Request) {
	id, c, _, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, flowStateResponse{
		SessionID: id,
		State:     c.State(),
		Draft:     c.Draft(),
	})
}

// UpdateDraft applies a partial draft edit.
func (h *Handlers) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, c, ctx, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var patch domain.DraftPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := c.Update(patch); err != nil {
		writeFlowError(w, err)
		return
	}
	h.sessions.Persist(ctx, id, c)

	writeJSON(w, http.StatusOK, flowStateResponse{
		SessionID: id,
		State:     c.State(),
		Draft:     c.Draft(),
	})
}

// NextStep advances the wizard one step forward.
func (h *Handlers) NextStep(w http.ResponseWriter, r *http.Request) {
	id, c, ctx, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	if err := c.Next(); err != nil {
		writeFlowError(w, err)
		return
	}
	h.sessions.Persist(ctx, id, c)

	writeJSON(w, http.StatusOK, flowStateResponse{
		SessionID: id,
		State:     c.State(),
		Draft:     c.Draft(),
	})
}

// PrevStep steps backward without clearing entered fields.
func (h *Handlers) PrevStep(w http.ResponseWriter, r *http.Request) {
	id, c, ctx, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	if err := c.Back(); err != nil {
		writeFlowError(w, err)
		return
	}
	h.sessions.Persist(ctx, id, c)

	writeJSON(w, http.StatusOK, flowStateResponse{
		SessionID: id,
		State:     c.State(),
		Draft:     c.Draft(),
	})
}

// Checkout submits contact info, collects payment and finalizes the
// booking.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	id, c, ctx, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, "Contact information is incomplete or invalid")
		return
	}

	result, err := c.Checkout(ctx, domain.Contact{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		writeFlowError(w, err)
		return
	}
	h.sessions.Persist(ctx, id, c)

	switch result.Outcome {
	case flow.OutcomeCompleted:
		h.onBookingConfirmed(ctx, result.Booking)
	case flow.OutcomeCompletedWithWarning:
		h.onBookingSaveFailed(ctx, result)
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		SessionID: id,
		State:     c.State(),
		Outcome:   result.Outcome,
		Booking:   result.Booking,
	})
}

func (h *Handlers) onBookingConfirmed(ctx context.Context, b *domain.Booking) {
	if h.bus != nil {
		event := events.BookingConfirmedEvent{
			BookingID:     b.BookingID,
			CustomerEmail: b.Customer.Email,
			CustomerName:  b.Customer.Name,
			ProductName:   b.Product.Name,
			Date:          b.Date,
			Time:          b.Time,
			TotalAmount:   b.TotalAmount,
			ConfirmedAt:   time.Now(),
		}
		if err := h.bus.Publish(ctx, events.BookingConfirmed, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish booking confirmed event", "error", err, "booking_id", b.BookingID)
		}
	}

	if h.mailer != nil {
		booking := *b
		go func() {
			if err := h.mailer.SendBookingConfirmation(&booking); err != nil {
				logger.Error("Failed to send booking confirmation email", "error", err, "booking_id", booking.BookingID)
			}
		}()
	}
}

func (h *Handlers) onBookingSaveFailed(ctx context.Context, result *flow.CheckoutResult) {
	if h.bus == nil {
		return
	}
	event := events.BookingSaveFailedEvent{
		FailedAt: time.Now(),
	}
	if result.SaveErr != nil {
		event.Reason = result.SaveErr.Error()
	}
	if result.Booking != nil {
		event.BookingID = result.Booking.BookingID
		event.CustomerEmail = result.Booking.Customer.Email
	}
	if err := h.bus.Publish(ctx, events.BookingSaveFailed, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking save failed event", "error", err)
	}
}

// resolveSession loads the controller for the session id in the URL and
// tags the request context for logging.
func (h *Handlers) resolveSession(w http.ResponseWriter, r *http.Request) (string, *flow.Controller, context.Context, bool) {
	id := chi.URLParam(r, "sessionID")
	ctx := context.WithValue(r.Context(), logger.SessionIDKey, id)

	c, err := h.sessions.Get(ctx, id)
	if err != nil {
		writeFlowError(w, err)
		return "", nil, nil, false
	}
	return id, c, ctx, true
}
