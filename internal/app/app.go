// Package app wires the canteen components over one store. An App is the
// state of a single interaction: open, act, close.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/GlaceYT/E-Canteen/internal/catalog"
	"github.com/GlaceYT/E-Canteen/internal/config"
	"github.com/GlaceYT/E-Canteen/internal/favorites"
	"github.com/GlaceYT/E-Canteen/internal/ids"
	"github.com/GlaceYT/E-Canteen/internal/ordering"
	"github.com/GlaceYT/E-Canteen/internal/session"
	"github.com/GlaceYT/E-Canteen/internal/store"
)

// App bundles the loaded components.
type App struct {
	Config    *config.Config
	Store     *store.Store
	Session   *session.Session
	Catalog   *catalog.Catalog
	Cart      *ordering.Cart
	Orders    *ordering.Manager
	Favorites *favorites.Set

	log *slog.Logger
}

type options struct {
	logger  *slog.Logger
	itemIDs ids.Generator
	orderID ids.Generator
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger handed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIDGenerators overrides the menu item and order id generators.
func WithIDGenerators(items, orders ids.Generator) Option {
	return func(o *options) {
		o.itemIDs = items
		o.orderID = orders
	}
}

// Open opens the store named by cfg, restores the session and loads the
// cart and favorites.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		itemIDs: ids.UUIDv7Generator{},
		orderID: ids.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a, err := load(ctx, cfg, st, o)
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

func load(ctx context.Context, cfg *config.Config, st *store.Store, o options) (*App, error) {
	sess := session.New(st, o.logger)
	if _, err := sess.Restore(ctx); err != nil {
		return nil, err
	}

	cart, err := ordering.LoadCart(ctx, st, o.logger)
	if err != nil {
		return nil, err
	}

	favs, err := favorites.Load(ctx, st, o.logger)
	if err != nil {
		return nil, err
	}

	orders := ordering.NewManager(st,
		ordering.WithIDGenerator(o.orderID),
		ordering.WithLogger(o.logger),
		ordering.WithGuestEmail(cfg.GuestEmail),
	)

	a := &App{
		Config:    cfg,
		Store:     st,
		Session:   sess,
		Catalog:   catalog.New(st, catalog.WithIDGenerator(o.itemIDs), catalog.WithLogger(o.logger)),
		Cart:      cart,
		Orders:    orders,
		Favorites: favs,
		log:       o.logger,
	}
	a.log.Debug("app opened", "database", cfg.Database, "role", sess.Current().Role, "cart_lines", len(cart.Lines()))
	return a, nil
}

// Close closes the store.
func (a *App) Close() error {
	return a.Store.Close()
}
