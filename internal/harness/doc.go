// Package harness runs canteen scenarios: YAML files listing a sequence of
// operations (log in, add to cart, check out, advance an order, ...) and
// assertions over the resulting trace and state.
//
// Each scenario runs against a fresh in-memory store with sequence id
// generators, so menu items are "item-0001", "item-0002", ... and orders
// are "order-0001", ... in the order they are created. Steps can bind the
// id they create to a name with `as:` and refer to it later.
//
// The trace (one event per step, with its outcome) is deterministic and can
// be compared against golden files with RunWithGolden.
//
// Steps are not gated by role. Role checks belong to the command layer;
// scenarios exercise the ordering core directly.
package harness
