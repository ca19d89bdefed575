// Package events carries domain notifications to the live feed and the broker.
package events

import (
	"context"
	"errors"
	"time"
)

const (
	TypeStockUpdate    = "stock_update"
	TypeInvoiceCreated = "invoice_created"
	TypeInvoicesPurged = "invoices_purged"
)

const (
	ActionProductCreated = "product_created"
	ActionProductUpdated = "product_updated"
	ActionProductDeleted = "product_deleted"
	ActionStockAdjusted  = "stock_adjusted"
	ActionInvoiced       = "invoiced"
)

// Event is the envelope published after a committed change.
type Event struct {
	Type    string    `json:"type"`
	Action  string    `json:"action,omitempty"`
	Key     string    `json:"key,omitempty"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

func New(typ, action, key string, payload any) Event {
	return Event{Type: typ, Action: action, Key: key, Payload: payload, At: time.Now().UTC()}
}

// Publisher delivers events. Implementations must not block the caller on
// slow consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type nop struct{}

func (nop) Publish(context.Context, Event) error { return nil }

// Nop discards every event.
func Nop() Publisher { return nop{} }

type multi []Publisher

// Multi fans an event out to every publisher and joins their errors.
func Multi(pubs ...Publisher) Publisher {
	out := make(multi, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (m multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
