package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusCancelled BookingStatus = "Cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// ProductSnapshot is the product identity frozen into a booking at
// submission time.
type ProductSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Booking is the finalized record accepted by the persistence boundary.
type Booking struct {
	BookingID   string         `json:"bookingId"`
	Customer    Contact        `json:"customer"`
	Product     ProductSnapshot `json:"product"`
	Date        time.Time      `json:"date"`
	Time        string         `json:"time"`
	Duration    DurationOption `json:"duration"`
	Address     string         `json:"address"`
	Status      BookingStatus  `json:"status"`
	TotalAmount int64          `json:"totalAmount"`
	CreatedAt   time.Time      `json:"created_at,omitzero"`
	UpdatedAt   time.Time      `json:"updated_at,omitzero"`
}

// NewBookingID generates a candidate booking reference in the form
// BK-<year>-<4-digit>. The random suffix is best-effort; the persistence
// layer owns collision handling.
func NewBookingID(now time.Time) string {
	return fmt.Sprintf("BK-%d-%04d", now.Year(), 1000+rand.Intn(9000))
}

// Validate enforces the minimum fields required at the persistence
// boundary. A booking failing this check must never be sent over the wire.
func (b *Booking) Validate() error {
	switch {
	case strings.TrimSpace(b.BookingID) == "":
		return fmt.Errorf("%w: booking id is required", ErrIncompleteBooking)
	case !b.Customer.Complete():
		return fmt.Errorf("%w: customer information is incomplete", ErrIncompleteBooking)
	case strings.TrimSpace(b.Product.ID) == "" || strings.TrimSpace(b.Product.Name) == "":
		return fmt.Errorf("%w: product information is incomplete", ErrIncompleteBooking)
	case b.Date.IsZero():
		return fmt.Errorf("%w: booking date is required", ErrIncompleteBooking)
	case b.TotalAmount <= 0:
		return fmt.Errorf("%w: total amount is required", ErrIncompleteBooking)
	}
	return nil
}
