package handlers

import (
	"net/http"
	"time"

	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/jumparoo/bounce-bookings/internal/http/response"
)

type availabilityResponse struct {
	Product string `json:"product"`
	Date    string `json:"date"`
	Status  string `json:"status"`
}

// CheckAvailability answers whether a product is free on a date.
func (h *Handlers) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	productRef := r.URL.Query().Get("product")
	rawDate := r.URL.Query().Get("date")
	if productRef == "" || rawDate == "" {
		response.BadRequest(w, "product and date parameters are required")
		return
	}

	date, err := time.Parse(domain.DateLayout, rawDate)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "Invalid date format", response.CodeInvalidDate)
		return
	}

	outcome, err := h.checker.Check(r.Context(), productRef, date)
	if err != nil {
		response.InternalError(w, "Failed to check availability")
		return
	}

	writeJSON(w, http.StatusOK, availabilityResponse{
		Product: productRef,
		Date:    rawDate,
		Status:  string(outcome),
	})
}
