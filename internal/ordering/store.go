package ordering

import (
	"context"

	"github.com/GlaceYT/E-Canteen/internal/store"
)

// Store is the slice of the key-value store this package needs.
// *store.Store satisfies it.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Apply(ctx context.Context, label string, writes ...store.Write) error
}
