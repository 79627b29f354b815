package cmd

import (
	"context"
	"path/filepath"

	"shipster/cli/internal/auth"
	"shipster/cli/internal/backend"
	"shipster/cli/internal/config"
	"shipster/cli/internal/dsn"
	apperrors "shipster/cli/internal/errors"
	"shipster/cli/internal/logging"
	"shipster/cli/internal/navigation"
	"shipster/cli/internal/store"
	"shipster/cli/internal/xdg"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// deps are the collaborators a command runs with.
type deps struct {
	cfg    config.Config
	logger *pterm.Logger
	store  store.Store
	client backend.Client
	nav    navigation.Navigator
	guard  *auth.Guard

	closers []func() error
}

// loadDeps resolves configuration and opens the store. The lobby client is only
// created when withClient is set.
func loadDeps(cmd *cobra.Command, withClient bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConfigInvalid, "load configuration", err)
	}
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	d := &deps{cfg: cfg, logger: logger, nav: &navigation.Terminal{Out: cmd.OutOrStdout()}}

	st, closeStore, err := openStore(cmd.Context(), cfg.Store)
	if err != nil {
		return nil, err
	}
	d.store = st
	d.closers = append(d.closers, closeStore)
	logger.Debug("session store ready", logger.Args("kind", cfg.Store.Kind))

	var joiner auth.Joiner
	if withClient {
		client, err := backend.New(cfg.Transport, backend.Config{
			BaseURL:  cfg.BackendURL,
			JoinPath: cfg.JoinPath,
			GRPCAddr: cfg.GRPCAddr,
			Timeout:  cfg.Timeout(),
			Logger:   logger,
		})
		if err != nil {
			d.Close()
			return nil, apperrors.Wrap(apperrors.ConfigInvalid, "create lobby client", err)
		}
		d.client = client
		d.closers = append(d.closers, client.Close)
		joiner = client
	}

	d.guard = auth.NewGuard(d.store, joiner, d.nav, auth.WithLogger(logger))
	return d, nil
}

// Close releases the store and client.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.logger.Debug("close failed", d.logger.Args("error", err))
		}
	}
}

// applyFlags layers explicitly set persistent flags over cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Kind = flagStore
	}
	if flags.Changed("transport") {
		cfg.Transport = flagTransport
	}
	if flags.Changed("backend") {
		if cfg.Transport == config.TransportGRPC {
			cfg.GRPCAddr = flagBackend
		} else {
			cfg.BackendURL = flagBackend
		}
	}
	if flags.Changed("verbose") && flagVerbose {
		cfg.LogLevel = "debug"
	}
}

// lobbyHost names the configured lobby for error messages.
func (d *deps) lobbyHost() string {
	if d.cfg.Transport == config.TransportGRPC {
		return d.cfg.GRPCAddr
	}
	return d.cfg.BackendURL
}

// openStore opens the configured backend and returns its release function.
func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch sc.Kind {
	case config.StoreMemory:
		return store.NewMemory(), noop, nil

	case config.StoreKeyring, "":
		k, err := store.OpenKeyring()
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.StoreFailed, "open OS keyring", err)
		}
		return k, noop, nil

	case config.StoreRedis:
		r, err := store.DialRedis(ctx, sc.RedisAddr, sc.RedisPrefix)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.StoreFailed, "connect to redis at "+sc.RedisAddr, err)
		}
		return r, r.Close, nil

	case config.StoreSQLite:
		path := sc.SQLitePath
		if path == "" {
			dir, err := xdg.StateDir()
			if err != nil {
				return nil, nil, apperrors.Wrap(apperrors.StoreFailed, "resolve state dir", err)
			}
			path = filepath.Join(dir, "session.db")
		}
		s, err := store.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.StoreFailed, "open "+path, err)
		}
		return s, s.Close, nil

	case config.StorePostgres:
		p, err := store.OpenPostgres(ctx, sc.PostgresDSN)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.StoreFailed, "connect to "+dsn.Redact(sc.PostgresDSN), err)
		}
		return p, p.Close, nil

	default:
		return nil, nil, apperrors.New(apperrors.ConfigInvalid, "unknown store "+sc.Kind)
	}
}
