package events

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const TypeStockUpdate = "stock_update"

// Actions
const (
	ActionProductCreated = "product_created"
	ActionProductUpdated = "product_updated"
	ActionProductDeleted = "product_deleted"
	ActionBillCreated    = "bill_created"
)

// Event is the envelope sent to websocket clients and Kafka
type Event struct {
	Type       string        `json:"type"`
	Action     string        `json:"action"`
	Product    *ProductEvent `json:"product,omitempty"`
	Bill       *BillEvent    `json:"bill,omitempty"`
	Message    string        `json:"message"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type ProductEvent struct {
	ID       uint             `json:"id"`
	Name     string           `json:"name"`
	Price    decimal.Decimal  `json:"price"`
	OldStock *decimal.Decimal `json:"old_stock,omitempty"`
	Stock    decimal.Decimal  `json:"stock"`
}

type BillEvent struct {
	ID     uint            `json:"id"`
	Total  decimal.Decimal `json:"total"`
	Items  int             `json:"items"`
	Stocks []StockLevel    `json:"stocks"`
}

// StockLevel is a product's stock after a bill was committed
type StockLevel struct {
	ProductID uint            `json:"product_id"`
	Stock     decimal.Decimal `json:"stock"`
}

// Key partitions events by the entity they describe
func (e Event) Key() string {
	switch {
	case e.Bill != nil:
		return "bill-" + strconv.FormatUint(uint64(e.Bill.ID), 10)
	case e.Product != nil:
		return "product-" + strconv.FormatUint(uint64(e.Product.ID), 10)
	}
	return e.Action
}

// Publisher delivers events after the state change they describe has been
// committed. Delivery errors never undo that change.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Multi fans an event out to several publishers
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory; handy for tests and debugging
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, evt)
	return nil
}

// Actions lists the recorded event actions in publish order
func (r *Recorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Action
	}
	return out
}
