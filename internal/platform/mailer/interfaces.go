package mailer

import "github.com/jumparoo/bounce-bookings/internal/domain"

type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendBookingConfirmation(b *domain.Booking) error
}
