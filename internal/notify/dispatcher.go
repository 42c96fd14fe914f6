// Package notify delivers order confirmations off the request path.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/storefront/internal/model"
)

const (
	DefaultQueueSize = 256
	sendTimeout      = 30 * time.Second
)

type OrderSource interface {
	Detail(ctx context.Context, id uuid.UUID) (model.Order, error)
}

type ProfileSource interface {
	Get(ctx context.Context, id uuid.UUID) (model.Profile, error)
}

// Dispatcher queues order ids and mails confirmations from a worker loop.
// Enqueueing never blocks: a full queue drops the notification. Failures are
// reported to OnError and never reach whoever enqueued the id.
type Dispatcher struct {
	queue    chan uuid.UUID
	orders   OrderSource
	profiles ProfileSource
	mailer   Mailer
	log      *slog.Logger

	OnError func(orderID uuid.UUID, err error)
}

func NewDispatcher(orders OrderSource, profiles ProfileSource, mailer Mailer, log *slog.Logger, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	d := &Dispatcher{
		queue:    make(chan uuid.UUID, size),
		orders:   orders,
		profiles: profiles,
		mailer:   mailer,
		log:      log,
	}
	d.OnError = func(orderID uuid.UUID, err error) {
		d.log.Warn("order confirmation failed", "order_id", orderID, "err", err)
	}
	return d
}

func (d *Dispatcher) NotifyOrderPlaced(orderID uuid.UUID) {
	select {
	case d.queue <- orderID:
	default:
		d.OnError(orderID, fmt.Errorf("notification queue full (%d)", cap(d.queue)))
	}
}

// Run drains the queue until ctx is done. Ids still queued at shutdown are
// dropped.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if n := len(d.queue); n > 0 {
				d.log.Warn("dropping queued confirmations", "count", n)
			}
			return nil
		case id := <-d.queue:
			if err := d.send(ctx, id); err != nil {
				d.OnError(id, err)
			}
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, orderID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	order, err := d.orders.Detail(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	customer, err := d.profiles.Get(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}
	if err := d.mailer.Send(ctx, customer.Email, "Order confirmation", confirmationBody(customer, order)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	d.log.Info("order confirmation sent", "order_id", orderID, "to", customer.Email)
	return nil
}

func confirmationBody(customer model.Profile, order model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nThanks! We received your order %s.\n\n", customer.FullName, order.ID)
	for _, it := range order.Items {
		name := it.ProductID.String()
		if it.Product != nil {
			name = it.Product.Name
		}
		fmt.Fprintf(&b, "  %d x %s @ %s\n", it.Quantity, name, it.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", order.Total().StringFixed(2))
	return b.String()
}
