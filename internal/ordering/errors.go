package ordering

import (
	"errors"
	"fmt"

	"github.com/GlaceYT/E-Canteen/internal/model"
)

// ErrEmptyCart is returned by Checkout when the cart has no lines.
var ErrEmptyCart = errors.New("cart is empty")

// OrderNotFoundError reports an order id missing from a collection.
type OrderNotFoundError struct {
	ID         string
	Collection string // model.KeyActiveOrders or model.KeyHistoryOrders
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %q not found in %s", e.ID, e.Collection)
}

// TransitionError reports a status change that would move an order
// backwards, out of Finished, or to an unknown status.
type TransitionError struct {
	ID   string
	From model.Status
	To   model.Status
}

func (e *TransitionError) Error() string {
	if e.From.Terminal() {
		return fmt.Sprintf("order %q is %s; no further status changes", e.ID, e.From)
	}
	if e.To.Terminal() {
		return fmt.Sprintf("order %q cannot be set to %s directly; use Finish", e.ID, e.To)
	}
	return fmt.Sprintf("order %q cannot move from %s to %s", e.ID, e.From, e.To)
}

// IsOrderNotFound returns true if err is or wraps an *OrderNotFoundError.
func IsOrderNotFound(err error) bool {
	var nf *OrderNotFoundError
	return errors.As(err, &nf)
}

// IsTransitionError returns true if err is or wraps a *TransitionError.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
