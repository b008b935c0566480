package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jumparoo/bounce-bookings/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	// Booking events
	BookingConfirmed  = "booking.confirmed"
	BookingSaveFailed = "booking.save_failed"
	BookingCancelled  = "booking.cancelled"

	// Payment events
	PaymentSucceeded = "payment.succeeded"
	PaymentCancelled = "payment.cancelled"

	// Notification events
	NotifyToast = "notify.toast"
	NotifySend  = "notify.send"
)

// Event payloads
type BookingConfirmedEvent struct {
	BookingID     string    `json:"booking_id"`
	CustomerEmail string    `json:"customer_email"`
	CustomerName  string    `json:"customer_name"`
	ProductName   string    `json:"product_name"`
	Date          time.Time `json:"date"`
	Time          string    `json:"time"`
	TotalAmount   int64     `json:"total_amount"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

type BookingSaveFailedEvent struct {
	BookingID     string    `json:"booking_id,omitempty"`
	CustomerEmail string    `json:"customer_email"`
	Reason        string    `json:"reason"`
	FailedAt      time.Time `json:"failed_at"`
}

type BookingCancelledEvent struct {
	BookingID   string    `json:"booking_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type PaymentEvent struct {
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
}

type ToastEvent struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
}
