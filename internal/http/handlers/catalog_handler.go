package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/jumparoo/bounce-bookings/internal/http/response"
)

// ListProducts populates the wizard's step-1 product choices.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to load products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	p, err := h.catalog.Get(r.Context(), ref)
	if err != nil {
		response.InternalError(w, "Failed to load product")
		return
	}
	if p == nil {
		response.NotFound(w, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListDurations returns the duration options in display order.
func (h *Handlers) ListDurations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Durations())
}
