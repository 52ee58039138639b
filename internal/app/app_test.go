package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlaceYT/E-Canteen/internal/config"
	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database = filepath.Join(t.TempDir(), "canteen.db")
	return cfg
}

func openApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := Open(context.Background(), cfg,
		WithIDGenerators(testutil.NewSequenceGenerator("item"), testutil.NewSequenceGenerator("order")))
	require.NoError(t, err)
	return a
}

func TestOpen_FreshDevice(t *testing.T) {
	a := openApp(t, testConfig(t))
	defer a.Close()

	assert.False(t, a.Session.Current().LoggedIn())
	assert.True(t, a.Cart.IsEmpty())
	assert.Zero(t, a.Favorites.Len())
}

func TestOpen_ResumesStateAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	first := openApp(t, cfg)
	_, err := first.Session.Login(ctx, model.RoleStudent, "s@x.edu")
	require.NoError(t, err)
	dosa, err := first.Catalog.Add(ctx, model.MenuItem{
		Name:      "Dosa",
		Category:  "South Indian",
		Price:     decimal.NewFromInt(40),
		Available: true,
	})
	require.NoError(t, err)
	require.NoError(t, first.Cart.Add(ctx, dosa))
	_, err = first.Favorites.Toggle(ctx, dosa.ID)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openApp(t, cfg)
	defer second.Close()

	assert.Equal(t, model.RoleStudent, second.Session.Current().Role)
	assert.Equal(t, 1, second.Cart.Quantity(dosa.ID))
	assert.True(t, second.Favorites.Contains(dosa.ID))

	order, err := second.Orders.Checkout(ctx, second.Cart, second.Session.Current().Email)
	require.NoError(t, err)
	assert.Equal(t, "order-0001", order.ID)
	assert.Equal(t, "s@x.edu", order.Email)
}

func TestOpen_GuestEmailFromConfig(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.GuestEmail = "walk-in@canteen"
	a := openApp(t, cfg)
	defer a.Close()

	require.NoError(t, a.Cart.Add(ctx, model.MenuItem{ID: "tea", Name: "Tea", Price: decimal.NewFromInt(10)}))
	order, err := a.Orders.Checkout(ctx, a.Cart, "")
	require.NoError(t, err)
	assert.Equal(t, "walk-in@canteen", order.Email)
}

func TestOpen_BadPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database = filepath.Join(t.TempDir(), "missing-dir", "nested", "canteen.db")

	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}
