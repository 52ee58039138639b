package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Status is an order's position in its lifecycle.
type Status string

const (
	StatusReceived  Status = "Received"
	StatusPreparing Status = "Preparing"
	StatusFinished  Status = "Finished"
)

// rank orders statuses; transitions only move to a higher rank.
func (s Status) rank() int {
	switch s {
	case StatusReceived:
		return 1
	case StatusPreparing:
		return 2
	case StatusFinished:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s.rank() > 0
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusFinished
}

// CanTransitionTo reports whether moving from s to next is a forward move.
// Received may skip Preparing; nothing leaves Finished.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	return next.rank() > s.rank()
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusReceived, StatusPreparing, StatusFinished} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// OrderLineItem is an immutable snapshot of a cart line taken at checkout.
type OrderLineItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
}

// Subtotal is quantity × unit price.
func (li OrderLineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is a placed order. Items keep cart order.
type Order struct {
	ID     string          `json:"id"`
	Email  string          `json:"email"`
	Items  []OrderLineItem `json:"items"`
	Total  decimal.Decimal `json:"total"`
	Status Status          `json:"status"`
}

// ItemCount is the sum of line quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, li := range o.Items {
		n += li.Quantity
	}
	return n
}

// Clone returns a copy that shares no slice storage with o.
func (o Order) Clone() Order {
	items := make([]OrderLineItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
