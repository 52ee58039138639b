package harness

import (
	"errors"

	"github.com/GlaceYT/E-Canteen/internal/catalog"
	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/ordering"
	"github.com/GlaceYT/E-Canteen/internal/session"
	"github.com/GlaceYT/E-Canteen/internal/store"
)

// Error kinds recorded in traces and matched by expect_error.
const (
	KindEmptyCart         = "empty_cart"
	KindOrderNotFound     = "order_not_found"
	KindInvalidTransition = "invalid_transition"
	KindItemNotFound      = "item_not_found"
	KindValidation        = "validation"
	KindInvalidLogin      = "invalid_login"
	KindStorage           = "storage"
	KindArgs              = "bad_args"
	KindOther             = "error"
)

// argError reports a malformed step argument.
type argError struct{ msg string }

func (e *argError) Error() string { return e.msg }

// ErrorKind classifies err for traces.
func ErrorKind(err error) string {
	var (
		ve *model.ValidationError
		ae *argError
	)
	switch {
	case errors.Is(err, ordering.ErrEmptyCart):
		return KindEmptyCart
	case ordering.IsOrderNotFound(err):
		return KindOrderNotFound
	case ordering.IsTransitionError(err):
		return KindInvalidTransition
	case errors.Is(err, catalog.ErrItemNotFound):
		return KindItemNotFound
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, session.ErrInvalidLogin):
		return KindInvalidLogin
	case store.IsStorageError(err):
		return KindStorage
	case errors.As(err, &ae):
		return KindArgs
	default:
		return KindOther
	}
}
