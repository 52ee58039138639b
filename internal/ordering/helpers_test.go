package ordering

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/store"
	"github.com/GlaceYT/E-Canteen/internal/testutil"
)

var errInjected = errors.New("injected write failure")

// flakyStore wraps a real store and fails Apply while failWrites is set.
type flakyStore struct {
	*store.Store
	failWrites bool
	applies    int
}

func (f *flakyStore) Apply(ctx context.Context, label string, writes ...store.Write) error {
	f.applies++
	if f.failWrites {
		return &store.StorageError{Op: "apply", Err: errInjected}
	}
	return f.Store.Apply(ctx, label, writes...)
}

func newTestStore(t *testing.T) *flakyStore {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "canteen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return &flakyStore{Store: st}
}

func newTestCart(t *testing.T, st Store) *Cart {
	t.Helper()
	c, err := LoadCart(context.Background(), st, nil)
	require.NoError(t, err)
	return c
}

func newTestManager(st Store) *Manager {
	return NewManager(st, WithIDGenerator(testutil.NewSequenceGenerator("order")))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(id, price string) model.MenuItem {
	return model.MenuItem{
		ID:        id,
		Name:      "Item " + id,
		Category:  "Meals",
		Price:     dec(price),
		Available: true,
	}
}

func discounted(id, price, discount string) model.MenuItem {
	it := item(id, price)
	d := dec(discount)
	it.DiscountedPrice = &d
	return it
}

// persistedCart reads the cart straight from the store.
func persistedCart(t *testing.T, st Store) []model.CartLine {
	t.Helper()
	var lines []model.CartLine
	_, err := st.Get(context.Background(), model.KeyCart, &lines)
	require.NoError(t, err)
	return lines
}

func persistedOrders(t *testing.T, st Store, key string) []model.Order {
	t.Helper()
	var orders []model.Order
	_, err := st.Get(context.Background(), key, &orders)
	require.NoError(t, err)
	return orders
}
