package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jumparoo/bounce-bookings/internal/platform/mailer"
	"github.com/jumparoo/bounce-bookings/pkg/config"
	"github.com/jumparoo/bounce-bookings/pkg/events"
	"github.com/jumparoo/bounce-bookings/pkg/logger"
)

// The notifier is the out-of-band half of the degraded-success policy:
// when a booking is paid for but fails to save, the customer sees a
// warning and is told to contact support. This worker makes sure
// support actually hears about it.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	bus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	var mail mailer.Service
	switch {
	case cfg.Email.DevMode:
		mail = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		mail = mailer.NewMailer(cfg.Email.MailerSendKey, "Jumparoo Party Rentals", cfg.Email.SMTPFrom)
	default:
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass)
	}

	w := &worker{mail: mail, supportAddr: cfg.Email.SupportAddr}

	if err := bus.QueueSubscribe(events.BookingSaveFailed, "notifier", w.onSaveFailed); err != nil {
		logger.Error("Failed to subscribe", "subject", events.BookingSaveFailed, "error", err)
		os.Exit(1)
	}
	if err := bus.QueueSubscribe(events.BookingConfirmed, "notifier", w.onConfirmed); err != nil {
		logger.Error("Failed to subscribe", "subject", events.BookingConfirmed, "error", err)
		os.Exit(1)
	}

	logger.Info("Notifier running", "support_addr", cfg.Email.SupportAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down notifier...")
}

type worker struct {
	mail        mailer.Service
	supportAddr string
}

// onSaveFailed alerts support about a paid booking that never reached
// the database so it can be reconciled by hand.
func (w *worker) onSaveFailed(msg *events.Message) {
	var event events.BookingSaveFailedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode save-failed event", "error", err)
		return
	}

	logger.Warn("Paid booking failed to save",
		"booking_id", event.BookingID,
		"customer_email", event.CustomerEmail,
		"reason", event.Reason,
	)

	subject := "ACTION REQUIRED: paid booking failed to save"
	text := fmt.Sprintf(
		"A customer was charged but their booking did not reach the database.\n\n"+
			"Booking ID: %s\nCustomer email: %s\nReason: %s\nFailed at: %s\n\n"+
			"Reconcile against the payment provider's records.",
		event.BookingID, event.CustomerEmail, event.Reason, event.FailedAt.Format("2006-01-02 15:04:05 MST"),
	)

	if _, err := w.mail.Send(w.supportAddr, "Support", subject, text, ""); err != nil {
		logger.Error("Failed to send save-failure alert", "error", err, "booking_id", event.BookingID)
	}
}

func (w *worker) onConfirmed(msg *events.Message) {
	var event events.BookingConfirmedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode confirmed event", "error", err)
		return
	}

	logger.Info("Booking confirmed",
		"booking_id", event.BookingID,
		"product", event.ProductName,
		"total_amount", event.TotalAmount,
	)
}
