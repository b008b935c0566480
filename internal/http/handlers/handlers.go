package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jumparoo/bounce-bookings/internal/availability"
	"github.com/jumparoo/bounce-bookings/internal/catalog"
	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/jumparoo/bounce-bookings/internal/http/response"
	"github.com/jumparoo/bounce-bookings/internal/platform/mailer"
	"github.com/jumparoo/bounce-bookings/internal/repo/postgres"
	"github.com/jumparoo/bounce-bookings/internal/session"
	"github.com/jumparoo/bounce-bookings/pkg/events"
)

type Handlers struct {
	sessions *session.Manager
	bookings postgres.BookingRepo
	catalog  catalog.Store
	checker  availability.Checker
	mailer   mailer.Service
	bus      events.Publisher
	validate *validator.Validate
	adminKey string
}

func New(
	sessions *session.Manager,
	bookings postgres.BookingRepo,
	store catalog.Store,
	checker availability.Checker,
	mail mailer.Service,
	bus events.Publisher,
	adminKey string,
) *Handlers {
	return &Handlers{
		sessions: sessions,
		bookings: bookings,
		catalog:  store,
		checker:  checker,
		mailer:   mail,
		bus:      bus,
		validate: validator.New(),
		adminKey: adminKey,
	}
}

// RequireAdminKey gates admin endpoints behind the static key from
// configuration. Empty key disables admin access entirely.
func (h *Handlers) RequireAdminKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if h.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) != 1 {
			response.Forbidden(w, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeFlowError maps state-machine errors to HTTP responses.
func writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		response.WriteError(w, http.StatusNotFound, "Booking session not found or expired", response.CodeSessionNotFound)
	case errors.Is(err, domain.ErrIncompleteStep):
		response.WriteError(w, http.StatusUnprocessableEntity, "Current step is incomplete", response.CodeStepIncomplete)
	case errors.Is(err, domain.ErrFlowBusy):
		response.WriteError(w, http.StatusConflict, "A payment or submission is already in progress", response.CodeFlowBusy)
	case errors.Is(err, domain.ErrInvalidTransition):
		response.Conflict(w, "Transition not allowed from current state")
	case errors.Is(err, domain.ErrUnknownDuration):
		response.BadRequest(w, "Unknown duration option")
	case errors.Is(err, domain.ErrInvalidDate):
		response.WriteError(w, http.StatusBadRequest, "Invalid date format", response.CodeInvalidDate)
	default:
		response.InternalError(w, "Something went wrong")
	}
}

// Helper functions for common response patterns
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Helper to parse pagination parameters
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
