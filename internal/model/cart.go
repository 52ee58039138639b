package model

import "github.com/shopspring/decimal"

// CartLine pairs a menu item snapshot with a positive quantity.
type CartLine struct {
	Item     MenuItem `json:"item"`
	Quantity int      `json:"quantity"`
}

// Subtotal is quantity × effective price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Item.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Saving is quantity × (price − discounted price), zero without a discount.
func (l CartLine) Saving() decimal.Decimal {
	return l.Item.UnitSaving().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot freezes the line into an order line. The unit price recorded is
// the effective price at this moment; later catalog edits do not reach it.
func (l CartLine) Snapshot() OrderLineItem {
	return OrderLineItem{
		ID:       l.Item.ID,
		Name:     l.Item.Name,
		Quantity: l.Quantity,
		Price:    l.Item.EffectivePrice(),
		Image:    l.Item.Image,
	}
}
