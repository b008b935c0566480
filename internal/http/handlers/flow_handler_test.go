package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumparoo/bounce-bookings/internal/availability"
	"github.com/jumparoo/bounce-bookings/internal/catalog"
	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/jumparoo/bounce-bookings/internal/flow"
	"github.com/jumparoo/bounce-bookings/internal/notify"
	"github.com/jumparoo/bounce-bookings/internal/payment"
	"github.com/jumparoo/bounce-bookings/internal/session"
)

// ---------- Fakes ----------

type stubCatalog struct{ products map[string]catalog.Product }

func (s stubCatalog) List(_ context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s stubCatalog) Get(_ context.Context, ref string) (*catalog.Product, error) {
	p, ok := s.products[ref]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type stubGateway struct{ outcome payment.Outcome }

func (s stubGateway) Initiate(_ context.Context, _ int64) (payment.Outcome, error) {
	return s.outcome, nil
}

// memoryRepo is an in-memory stand-in for the Postgres booking store.
type memoryRepo struct {
	mu       sync.Mutex
	bookings map[string]domain.Booking
	fail     bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{bookings: make(map[string]domain.Booking)}
}

func (m *memoryRepo) Submit(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, context.DeadlineExceeded
	}
	saved := *b
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	m.bookings[saved.BookingID] = saved
	return &saved, nil
}

func (m *memoryRepo) GetByBookingID(_ context.Context, bookingID string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memoryRepo) List(_ context.Context, _, _ int) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (m *memoryRepo) ListByStatus(_ context.Context, status domain.BookingStatus, _, _ int) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memoryRepo) Cancel(_ context.Context, bookingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok || b.Status == domain.StatusCancelled {
		return false, nil
	}
	b.Status = domain.StatusCancelled
	m.bookings[bookingID] = b
	return true, nil
}

func (m *memoryRepo) CountActiveOn(_ context.Context, productRef string, date time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, b := range m.bookings {
		if b.Product.ID == productRef && b.Status != domain.StatusCancelled && b.Date.Equal(date) {
			count++
		}
	}
	return count, nil
}

type noopMailer struct{}

func (noopMailer) Send(_, _, _, _, _ string) (string, error)      { return "", nil }
func (noopMailer) SendBookingConfirmation(_ *domain.Booking) error { return nil }

// ---------- Harness ----------

type harness struct {
	srv  *httptest.Server
	repo *memoryRepo
}

func newHarness(t *testing.T, gateway payment.Gateway) *harness {
	t.Helper()

	repo := newMemoryRepo()
	store := stubCatalog{products: map[string]catalog.Product{
		"p1": {Ref: "p1", Name: "The Pirate Ship Bounce House"},
	}}

	sessions := session.NewManager(session.NewMemoryStore(), flow.Deps{
		Catalog:  store,
		Payments: gateway,
		Sink:     repo,
		Notifier: notify.LogNotifier{},
	})

	h := New(sessions, repo, store, availability.NewRepoChecker(repo), noopMailer{}, nil, "secret-key")

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/booking-flow", func(r chi.Router) {
			r.Post("/", h.StartFlow)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.GetFlow)
				r.Patch("/", h.UpdateDraft)
				r.Post("/next", h.NextStep)
				r.Post("/back", h.PrevStep)
				r.Post("/checkout", h.Checkout)
			})
		})
		r.Get("/products", h.ListProducts)
		r.Get("/products/{ref}", h.GetProduct)
		r.Get("/durations", h.ListDurations)
		r.Get("/availability", h.CheckAvailability)
		r.Post("/bookings", h.CreateBooking)
		r.Get("/bookings/{bookingID}", h.GetBooking)
		r.With(h.RequireAdminKey).Get("/bookings", h.ListBookings)
		r.With(h.RequireAdminKey).Delete("/bookings/{bookingID}", h.CancelBooking)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, repo: repo}
}

func (h *harness) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

type flowState struct {
	SessionID string       `json:"session_id"`
	State     string       `json:"state"`
	Draft     domain.Draft `json:"draft"`
}

type checkoutBody struct {
	SessionID string          `json:"session_id"`
	State     string          `json:"state"`
	Outcome   string          `json:"outcome"`
	Booking   *domain.Booking `json:"booking"`
}

func startFlow(t *testing.T, h *harness) string {
	res := h.do(t, http.MethodPost, "/api/booking-flow", nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	state := decode[flowState](t, res)
	require.NotEmpty(t, state.SessionID)
	require.Equal(t, "selecting_product", state.State)
	return state.SessionID
}

// ---------- Wizard walkthrough ----------

func TestWizardFullWalkthrough(t *testing.T) {
	h := newHarness(t, stubGateway{outcome: payment.OutcomeSucceeded})
	id := startFlow(t, h)
	base := "/api/booking-flow/" + id

	// Advancing an empty draft is rejected.
	res := h.do(t, http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	res.Body.Close()

	// Step 1: product and date.
	res = h.do(t, http.MethodPatch, base, map[string]string{
		"product_ref": "p1",
		"date":        "2025-09-15",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = h.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "entering_details", decode[flowState](t, res).State)

	// Step 2: schedule and address.
	res = h.do(t, http.MethodPatch, base, map[string]string{
		"time":    "10:00",
		"address": "12 Main St",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = h.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "confirming", decode[flowState](t, res).State)

	// Back navigation keeps entered fields.
	res = h.do(t, http.MethodPost, base+"/back", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	state := decode[flowState](t, res)
	assert.Equal(t, "entering_details", state.State)
	assert.Equal(t, "12 Main St", state.Draft.Address)

	res = h.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	// Checkout.
	res = h.do(t, http.MethodPost, base+"/checkout", map[string]string{
		"name":  "Ama",
		"phone": "0240000000",
		"email": "a@x.com",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	out := decode[checkoutBody](t, res)

	assert.Equal(t, "completed", out.State)
	assert.Equal(t, "completed", out.Outcome)
	require.NotNil(t, out.Booking)
	assert.Equal(t, int64(600), out.Booking.TotalAmount)
	assert.Regexp(t, `^BK-\d{4}-\d{4}$`, out.Booking.BookingID)

	// The record landed in the store and is publicly retrievable.
	res = h.do(t, http.MethodGet, "/api/bookings/"+out.Booking.BookingID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	saved := decode[domain.Booking](t, res)
	assert.Equal(t, domain.StatusConfirmed, saved.Status)
}

func TestCheckoutRejectsInvalidContact(t *testing.T) {
	h := newHarness(t, stubGateway{outcome: payment.OutcomeSucceeded})
	id := startFlow(t, h)

	res := h.do(t, http.MethodPost, "/api/booking-flow/"+id+"/checkout", map[string]string{
		"name":  "Ama",
		"phone": "0240000000",
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}

func TestCheckoutPaymentCancelledKeepsSessionAlive(t *testing.T) {
	h := newHarness(t, stubGateway{outcome: payment.OutcomeCancelled})
	id := startFlow(t, h)
	base := "/api/booking-flow/" + id

	res := h.do(t, http.MethodPatch, base, map[string]string{
		"product_ref": "p1", "date": "2025-09-15",
	})
	res.Body.Close()
	res = h.do(t, http.MethodPost, base+"/next", nil)
	res.Body.Close()
	res = h.do(t, http.MethodPatch, base, map[string]string{
		"time": "10:00", "address": "12 Main St",
	})
	res.Body.Close()
	res = h.do(t, http.MethodPost, base+"/next", nil)
	res.Body.Close()

	res = h.do(t, http.MethodPost, base+"/checkout", map[string]string{
		"name": "Ama", "phone": "0240000000", "email": "a@x.com",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	out := decode[checkoutBody](t, res)

	assert.Equal(t, "payment_cancelled", out.Outcome)
	assert.Equal(t, "confirming", out.State)
	assert.Nil(t, out.Booking)
	assert.Empty(t, h.repo.bookings)

	// The session is still usable.
	res = h.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	state := decode[flowState](t, res)
	assert.Equal(t, "confirming", state.State)
	assert.Equal(t, "Ama", state.Draft.Contact.Name)
}

func TestUnknownSessionIs404(t *testing.T) {
	h := newHarness(t, stubGateway{outcome: payment.OutcomeSucceeded})

	res := h.do(t, http.MethodGet, "/api/booking-flow/ghost", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()
}

// ---------- Catalog and availability ----------

func TestListDurations(t *testing.T) {
	h := newHarness(t, stubGateway{outcome: payment.OutcomeSucceeded})

	res := h.do(t, http.MethodGet, "/api/durations", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	durations := decode[[]domain.DurationOption](t, res)

	require.Len(t, durations, 3)
	assert.Equal(t, domain.Duration4Hours, durations[0].ID)
	assert.Equal(t, int64(600), durations[0].Price)
}

func TestGetProductNotFound(t *testing.T) {
	h := newHarness(t, stubGateway{outcome: payment.OutcomeSucceeded})

	res := h.do(t, http.MethodGet, "/api/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()
}

func TestAvailabilityReflectsBookings(t *testing.T) {
	h := newHarness(t, stubGateway{outcome: payment.OutcomeSucceeded})

	res := h.do(t, http.MethodGet, "/api/availability?product=p1&date=2025-09-15", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[map[string]string](t, res)
	assert.Equal(t, "available", body["status"])

	h.repo.bookings["BK-2025-1234"] = domain.Booking{
		BookingID: "BK-2025-1234",
		Product:   domain.ProductSnapshot{ID: "p1", Name: "The Pirate Ship Bounce House"},
		Date:      time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusConfirmed,
	}

	res = h.do(t, http.MethodGet, "/api/availability?product=p1&date=2025-09-15", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body = decode[map[string]string](t, res)
	assert.Equal(t, "unavailable", body["status"])
}

func TestAvailabilityRejectsBadDate(t *testing.T) {
	h := newHarness(t, stubGateway{outcome: payment.OutcomeSucceeded})

	res := h.do(t, http.MethodGet, "/api/availability?product=p1&date=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}

// ---------- Admin gating ----------

func TestAdminEndpointsRequireKey(t *testing.T) {
	h := newHarness(t, stubGateway{outcome: payment.OutcomeSucceeded})

	res := h.do(t, http.MethodGet, "/api/bookings", nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res.Body.Close()

	req, err := http.NewRequest(http.MethodGet, h.srv.URL+"/api/bookings", nil)
	require.NoError(t, err)
	req.Header.Set("X-Admin-Key", "secret-key")
	ok, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, ok.StatusCode)
	ok.Body.Close()
}

// ---------- Direct booking creation ----------

func TestCreateBookingValidatesRecord(t *testing.T) {
	h := newHarness(t, stubGateway{outcome: payment.OutcomeSucceeded})

	// Incomplete record is rejected at the boundary.
	res := h.do(t, http.MethodPost, "/api/bookings", domain.Booking{BookingID: "BK-2025-5555"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	b := domain.Booking{
		BookingID:   "BK-2025-5555",
		Customer:    domain.Contact{Name: "Kofi", Phone: "0200000000", Email: "k@x.com"},
		Product:     domain.ProductSnapshot{ID: "p1", Name: "The Pirate Ship Bounce House"},
		Date:        time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		Time:        "14:00",
		TotalAmount: 1000,
	}
	res = h.do(t, http.MethodPost, "/api/bookings", b)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	saved := decode[domain.Booking](t, res)
	assert.Equal(t, domain.StatusPending, saved.Status)
}
