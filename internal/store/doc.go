// Package store provides the SQLite-backed key-value store that holds all
// canteen state on the device.
//
// Every value is a whole collection (or a scalar) serialised as JSON and
// stored under a string key. There is no per-record addressing: callers
// read a collection, modify it and write it back in full.
//
// # Batches
//
// Apply commits a set of puts and removes in one SQLite transaction, so an
// operation that touches two collections (checkout writes activeOrders and
// cart, finish writes activeOrders and historyOrders) either lands
// completely or not at all.
//
// # Journal
//
// Each committed batch appends one row to the journal table in the same
// transaction: a monotonic seq, the operation label and the keys it wrote.
// The journal is append-only and is read in seq order.
//
// # Database Configuration
//
//   - WAL mode: readers do not block the writer
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - single connection: one writer at a time
package store
