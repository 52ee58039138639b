// Package model defines the canteen's persisted records.
//
// The records here are the shapes stored as whole-collection JSON blobs in
// the on-device key-value store:
//   - MenuItem: catalog entry authored by admins
//   - CartLine: (menu item snapshot, quantity) pair owned by the cart
//   - OrderLineItem: frozen snapshot of a cart line at checkout
//   - Order: checkout result with a unidirectional status
//
// Money is always decimal.Decimal. Floats never carry prices or totals, so
// totals computed at checkout are exact and round-trip through JSON
// unchanged.
package model
