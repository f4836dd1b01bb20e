// Package notifier fans order and reservation events out to SMS, email and
// the message broker. Delivery is best effort: failures are logged and never
// reach the HTTP response.
package notifier

import (
	"context"

	"github.com/Fooxyj/dacha/internal/models"
)

type Notifier interface {
	OrderPlaced(ctx context.Context, order models.Order)
	OrderPaid(ctx context.Context, order models.Order)
	OrderStatusChanged(ctx context.Context, order models.Order, from models.OrderStatus)
	ReservationCreated(ctx context.Context, reservation models.Reservation)
}

// Nop drops every event.
type Nop struct{}

func (Nop) OrderPlaced(context.Context, models.Order) {}
func (Nop) OrderPaid(context.Context, models.Order) {}
func (Nop) OrderStatusChanged(context.Context, models.Order, models.OrderStatus) {}
func (Nop) ReservationCreated(context.Context, models.Reservation) {}
