package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Fooxyj/dacha/internal/models"
)

const deliveryTimeout = 15 * time.Second

type textSender interface {
	Send(ctx context.Context, to, message string) error
}

type mailSender interface {
	Send(ctx context.Context, subject, text, html string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Dispatcher delivers events off the request goroutine. Any channel may be
// nil, in which case it is skipped.
type Dispatcher struct {
	sms    textSender
	email  mailSender
	events eventPublisher
	log    *slog.Logger
	wg     sync.WaitGroup
}

func NewDispatcher(sms *SMSSender, email *EmailSender, events *Publisher, log *slog.Logger) *Dispatcher {
	d := &Dispatcher{log: log}
	// Typed nils must not leak into the interfaces.
	if sms != nil {
		d.sms = sms
	}
	if email != nil {
		d.email = email
	}
	if events != nil {
		d.events = events
	}
	return d
}

func (d *Dispatcher) OrderPlaced(_ context.Context, order models.Order) {
	d.dispatch(EventOrderPlaced, func(ctx context.Context, g *errgroup.Group) {
		if d.sms != nil {
			g.Go(func() error {
				return d.sms.Send(ctx, order.Phone, orderPlacedSMS(order))
			})
		}
		if d.email != nil {
			g.Go(func() error {
				subject, text, body := orderPlacedEmail(order)
				return d.email.Send(ctx, subject, text, body)
			})
		}
		d.publish(ctx, g, orderEvent(EventOrderPlaced, order))
	})
}

func (d *Dispatcher) OrderPaid(_ context.Context, order models.Order) {
	d.dispatch(EventOrderPaid, func(ctx context.Context, g *errgroup.Group) {
		d.publish(ctx, g, orderEvent(EventOrderPaid, order))
	})
}

func (d *Dispatcher) OrderStatusChanged(_ context.Context, order models.Order, from models.OrderStatus) {
	d.dispatch(EventOrderStatusChanged, func(ctx context.Context, g *errgroup.Group) {
		ev := orderEvent(EventOrderStatusChanged, order)
		ev.PreviousStatus = string(from)
		d.publish(ctx, g, ev)
	})
}

func (d *Dispatcher) ReservationCreated(_ context.Context, r models.Reservation) {
	d.dispatch(EventReservationCreated, func(ctx context.Context, g *errgroup.Group) {
		if d.email != nil {
			g.Go(func() error {
				subject, text, body := reservationEmail(r)
				return d.email.Send(ctx, subject, text, body)
			})
		}
		d.publish(ctx, g, reservationEvent(r))
	})
}

// Wait blocks until in-flight deliveries finish. Used on shutdown and in
// tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) publish(ctx context.Context, g *errgroup.Group, ev Event) {
	if d.events == nil {
		return
	}
	g.Go(func() error {
		return d.events.Publish(ctx, ev)
	})
}

// dispatch runs fill on a detached context: the request that raised the
// event is usually finished before delivery completes.
func (d *Dispatcher) dispatch(kind string, fill func(ctx context.Context, g *errgroup.Group)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()

		var g errgroup.Group
		fill(ctx, &g)
		if err := g.Wait(); err != nil {
			d.log.Error("notification delivery failed", "event", kind, "error", err)
		}
	}()
}

func orderPlacedSMS(order models.Order) string {
	return fmt.Sprintf("Ваш заказ №%d принят! Сумма: %s ₽. Спасибо, что выбрали нас!", order.ID, order.TotalPrice.String())
}

func orderPlacedEmail(order models.Order) (subject, text, body string) {
	subject = fmt.Sprintf("Новый заказ №%d на %s ₽", order.ID, order.TotalPrice.String())

	text = fmt.Sprintf("Заказ №%d\nКлиент: %s\nТелефон: %s\nАдрес: %s\nОплата: %s\n\n",
		order.ID, order.Name, order.Phone, order.Address, order.PaymentMethod)
	body = fmt.Sprintf("<html><body><p><strong>Заказ №%d</strong></p><p>Клиент: %s<br>Телефон: %s<br>Адрес: %s<br>Оплата: %s</p><ul>",
		order.ID, html.EscapeString(order.Name), html.EscapeString(order.Phone), html.EscapeString(order.Address), order.PaymentMethod)

	for _, line := range order.Items {
		text += fmt.Sprintf("- %s x%d, %s ₽\n", line.Title, line.Quantity, line.Price.String())
		body += fmt.Sprintf("<li>%s x%d, %s ₽</li>", html.EscapeString(line.Title), line.Quantity, line.Price.String())
	}

	text += fmt.Sprintf("\nИтого: %s ₽", order.TotalPrice.String())
	body += fmt.Sprintf("</ul><p>Итого: %s ₽</p></body></html>", order.TotalPrice.String())
	return subject, text, body
}

func reservationEmail(r models.Reservation) (subject, text, body string) {
	when := models.FormatDate(r.Date) + " " + r.Time.String()
	subject = fmt.Sprintf("Бронь столика на %s", when)
	text = fmt.Sprintf("Имя: %s\nТелефон: %s\nКогда: %s\nГостей: %d\nКомментарий: %s",
		r.Name, r.Phone, when, r.Guests, r.Comment)
	body = fmt.Sprintf("<html><body><p>Имя: %s<br>Телефон: %s<br>Когда: %s<br>Гостей: %d<br>Комментарий: %s</p></body></html>",
		html.EscapeString(r.Name), html.EscapeString(r.Phone), when, r.Guests, html.EscapeString(r.Comment))
	return subject, text, body
}
