package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jumparoo/bounce-bookings/internal/domain"
	"github.com/mailersend/mailersend-go"
)

type Mailer struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	Enabled bool
}

func NewMailer(apiKey, fromName, fromEmail string) *Mailer {
	m := &Mailer{
		Enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
	if m.Enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *Mailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	if !m.Enabled {
		return "", errors.New("mailer disabled (missing MAILERSEND_API_KEY or SMTP_FROM)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	// MailerSend uses X-Message-Id
	return res.Header.Get("X-Message-Id"), nil
}

func (m *Mailer) SendBookingConfirmation(b *domain.Booking) error {
	subject, text, html := confirmationBody(b)
	_, err := m.Send(b.Customer.Email, b.Customer.Name, subject, text, html)
	return err
}

func confirmationBody(b *domain.Booking) (subject, text, html string) {
	date := b.Date.Format("Monday, January 2, 2006")
	subject = fmt.Sprintf("Your Jumparoo booking %s is confirmed", b.BookingID)
	text = fmt.Sprintf(
		"Hi %s,\n\nYour booking is confirmed!\n\nBooking ID: %s\nProduct: %s\nDate: %s at %s\nDuration: %s\nDelivery address: %s\nTotal: GHS %d\n\nSee you at the party!",
		b.Customer.Name, b.BookingID, b.Product.Name, date, b.Time, b.Duration.Label, b.Address, b.TotalAmount,
	)
	html = fmt.Sprintf(
		`<p>Hi %s,</p><p>Your booking is confirmed!</p>
<ul>
<li><b>Booking ID:</b> %s</li>
<li><b>Product:</b> %s</li>
<li><b>Date:</b> %s at %s</li>
<li><b>Duration:</b> %s</li>
<li><b>Delivery address:</b> %s</li>
<li><b>Total:</b> GHS %d</li>
</ul>
<p>See you at the party!</p>`,
		b.Customer.Name, b.BookingID, b.Product.Name, date, b.Time, b.Duration.Label, b.Address, b.TotalAmount,
	)
	return subject, text, html
}
