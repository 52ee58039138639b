// Package ordering implements the canteen's cart and order lifecycle.
//
// A Cart is an in-memory list of (menu item, quantity) lines mirrored to the
// "cart" key after every mutation. Totals are derived on every call, never
// stored.
//
// A Manager turns a cart into an Order, moves orders forward through
// Received → Preparing → Finished, archives finished orders into history and
// rebuilds a cart from a historical order.
//
// # Invariants
//
//   - A cart holds at most one line per item id and never a line with
//     quantity ≤ 0.
//   - Status only moves forward. Received may skip Preparing. Nothing leaves
//     Finished.
//   - Finishing copies the order into history; the active copy stays until
//     it is explicitly deleted.
//
// # Atomicity
//
// Checkout (activeOrders + cart) and Finish (activeOrders + historyOrders)
// are written as one store batch. In-memory cart state is replaced only
// after the batch commits.
package ordering
