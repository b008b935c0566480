package mailer

import (
	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/jumparoo/bounce-bookings/pkg/logger"
)

// DevMailer logs emails instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("[DEV MAIL]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
		"text", text,
	)
	return "dev", nil
}

func (d *DevMailer) SendBookingConfirmation(b *domain.Booking) error {
	subject, text, _ := confirmationBody(b)
	_, err := d.Send(b.Customer.Email, b.Customer.Name, subject, text, "")
	return err
}

var _ Service = (*DevMailer)(nil)
