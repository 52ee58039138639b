package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/GlaceYT/E-Canteen/internal/app"
	"github.com/GlaceYT/E-Canteen/internal/config"
	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/session"
	"github.com/GlaceYT/E-Canteen/internal/store"
)

// env is what a state-touching command runs against: one opened app for
// the duration of one invocation.
type env struct {
	ctx context.Context
	app *app.App
	out *OutputFormatter
}

// require fails unless the session holds role.
func (e *env) require(role model.Role) error {
	if err := e.app.Session.Require(role); err != nil {
		return e.out.Fail(err)
	}
	return nil
}

// requireLogin fails unless someone is logged in.
func (e *env) requireLogin() error {
	if !e.app.Session.Current().LoggedIn() {
		return e.out.Fail(session.ErrNotLoggedIn)
	}
	return nil
}

// money renders an amount with the configured currency symbol.
func (e *env) money(d decimal.Decimal) string {
	return e.app.Config.Currency + d.StringFixed(2)
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadConfig layers defaults, the optional --config file, CANTEEN_*
// variables and the --db flag, then validates the result.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.LoadFromEnv()
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes text records to w. --verbose forces debug level.
func newLogger(w io.Writer, opts *RootOptions, cfg *config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// withApp opens the app for one command and closes it afterwards.
// Configuration and open failures are reported through the formatter.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(e *env) error) error {
	out := newFormatter(cmd, opts)

	cfg, err := loadConfig(opts)
	if err != nil {
		return out.Fail(err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger(cmd.ErrOrStderr(), opts, cfg)
	a, err := app.Open(ctx, cfg, app.WithLogger(logger))
	if err != nil {
		if !store.IsStorageError(err) {
			err = &store.StorageError{Op: "open", Key: cfg.Database, Err: err}
		}
		return out.Fail(err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("close store", "error", cerr)
		}
	}()

	out.VerboseLog("database: %s", cfg.Database)
	return fn(&env{ctx: ctx, app: a, out: out})
}

// argError marks a malformed command argument.
type argError struct {
	msg string
}

func (e *argError) Error() string { return e.msg }

func badArg(format string, args ...any) error {
	return &argError{msg: fmt.Sprintf(format, args...)}
}
