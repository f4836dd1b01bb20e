package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Fooxyj/dacha/internal/models"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
	EventReservationCreated = "reservation.created"
)

// Event is the JSON body published for every routing key.
type Event struct {
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	OrderID        uint      `json:"order_id,omitempty"`
	ReservationID  uint      `json:"reservation_id,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	PaymentMethod  string    `json:"payment_method,omitempty"`
	IsPaid         bool      `json:"is_paid,omitempty"`
	TotalPrice     string    `json:"total_price,omitempty"`
	CustomerName   string    `json:"customer_name,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Date           string    `json:"date,omitempty"`
	Time           string    `json:"time,omitempty"`
	Guests         int       `json:"guests,omitempty"`
}

func orderEvent(kind string, order models.Order) Event {
	return Event{
		Type:          kind,
		OccurredAt:    time.Now().UTC(),
		OrderID:       order.ID,
		Status:        string(order.Status),
		PaymentMethod: string(order.PaymentMethod),
		IsPaid:        order.IsPaid,
		TotalPrice:    order.TotalPrice.String(),
		CustomerName:  order.Name,
		Phone:         order.Phone,
	}
}

func reservationEvent(r models.Reservation) Event {
	return Event{
		Type:          EventReservationCreated,
		OccurredAt:    time.Now().UTC(),
		ReservationID: r.ID,
		CustomerName:  r.Name,
		Phone:         r.Phone,
		Date:          models.FormatDate(r.Date),
		Time:          r.Time.String(),
		Guests:        r.Guests,
	}
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher writes events to a durable topic exchange, one routing key per
// event type.
type Publisher struct {
	conn     *amqp091.Connection
	channel  amqpChannel
	exchange string
}

// DialPublisher connects to RabbitMQ and declares the exchange.
func DialPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, ev.Type, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
