package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/jumparoo/bounce-bookings/internal/http/response"
	"github.com/jumparoo/bounce-bookings/pkg/logger"
)

// CreateBooking accepts an already-finalized booking record. This is the
// persistence boundary the wizard submits through; it is also exposed
// directly for API parity with the legacy frontend.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var b domain.Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if b.Status == "" {
		b.Status = domain.StatusPending
	}
	if _, ok := domain.ParseBookingStatus(string(b.Status)); !ok {
		response.BadRequest(w, "Invalid booking status")
		return
	}
	if err := b.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	saved, err := h.bookings.Submit(r.Context(), &b)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create booking", "error", err)
		response.InternalError(w, "Failed to create booking")
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// ListBookings returns bookings for the admin dashboard.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := domain.ParseBookingStatus(raw)
		if !ok {
			response.BadRequest(w, "Invalid status parameter")
			return
		}
		bookings, err := h.bookings.ListByStatus(r.Context(), status, limit, offset)
		if err != nil {
			response.InternalError(w, "Failed to retrieve bookings")
			return
		}
		writeJSON(w, http.StatusOK, bookings)
		return
	}

	bookings, err := h.bookings.List(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w, "Failed to retrieve bookings")
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// GetBooking looks up a booking by its public reference.
func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")

	b, err := h.bookings.GetByBookingID(r.Context(), bookingID)
	if err != nil {
		response.InternalError(w, "Failed to retrieve booking")
		return
	}
	if b == nil {
		response.NotFound(w, "Booking not found")
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// CancelBooking marks a booking cancelled.
func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")

	ok, err := h.bookings.Cancel(r.Context(), bookingID)
	if err != nil {
		response.InternalError(w, "Failed to cancel booking")
		return
	}
	if !ok {
		response.NotFound(w, "Booking not found or already cancelled")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"booking_id": bookingID, "status": string(domain.StatusCancelled)})
}
