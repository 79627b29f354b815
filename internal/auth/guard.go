// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth implements the session guard: access-level checks, joining the lobby,
// and leaving it. The session is whatever the lobby returned on join, stored verbatim
// as JSON under a single key. Presence of that key is the only authentication signal;
// nothing in the stored value is ever verified or consulted for authorization.
package auth

import (
	"context"
	"encoding/json"

	"shipster/cli/internal/access"
	apperrors "shipster/cli/internal/errors"
	"shipster/cli/internal/logging"
	"shipster/cli/internal/navigation"
	"shipster/cli/internal/store"

	"github.com/pterm/pterm"
)

// Joiner submits a nick to the lobby and returns its success payload.
// backend.Client satisfies it.
type Joiner interface {
	Join(ctx context.Context, nick string) (map[string]any, error)
}

// Guard holds no state of its own; the store is the source of truth.
type Guard struct {
	store  store.Store
	joiner Joiner
	nav    navigation.Navigator
	key    string
	logger *pterm.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *pterm.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithKey overrides the store key holding the session.
func WithKey(key string) Option {
	return func(g *Guard) {
		if key != "" {
			g.key = key
		}
	}
}

// NewGuard wires a Guard to its collaborators. A nil navigator discards signals.
func NewGuard(s store.Store, j Joiner, nav navigation.Navigator, opts ...Option) *Guard {
	if nav == nil {
		nav = navigation.Discard
	}
	g := &Guard{
		store:  s,
		joiner: j,
		nav:    nav,
		key:    store.KeySessionToken,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize reports whether the current session satisfies required.
// Only access.Player needs a session; every other level is open.
func (g *Guard) Authorize(ctx context.Context, required access.Level) bool {
	if required != access.Player {
		return true
	}
	return g.IsAuthenticated(ctx)
}

// IsAuthenticated reports whether a session is stored. A store that cannot be read
// counts as no session.
func (g *Guard) IsAuthenticated(ctx context.Context) bool {
	_, ok, err := g.store.Get(ctx, g.key)
	if err != nil {
		g.logger.Warn("session store unreadable, treating as logged out", g.logger.Args("error", err))
		return false
	}
	return ok
}

// Login joins the lobby as nick and stores the returned payload. The store is written
// only after the join succeeds; on any join error the previous session is untouched
// and the error is returned as is.
func (g *Guard) Login(ctx context.Context, nick string) (Session, error) {
	payload, err := g.joiner.Join(ctx, nick)
	if err != nil {
		g.logger.Debug("join failed", g.logger.Args("nick", nick, "error", logging.Mask(err.Error())))
		return Session{}, err
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return Session{}, apperrors.Wrap(apperrors.InvalidResponse, "encode session", err)
	}
	if err := g.store.Set(ctx, g.key, string(b)); err != nil {
		return Session{}, apperrors.Wrap(apperrors.StoreFailed, "save session", err)
	}

	g.logger.Debug("session stored", g.logger.Args("nick", nick, "bytes", len(b)))
	return Session{Raw: string(b)}, nil
}

// Logout removes the stored session and signals navigation to the login view.
// It succeeds whether or not a session existed.
func (g *Guard) Logout(ctx context.Context) {
	if err := g.store.Unset(ctx, g.key); err != nil {
		g.logger.Warn("failed to remove session", g.logger.Args("error", err))
	}
	g.nav.Navigate(navigation.AnonLogin)
}

// Session returns the stored session, if any.
func (g *Guard) Session(ctx context.Context) (Session, bool) {
	raw, ok, err := g.store.Get(ctx, g.key)
	if err != nil {
		g.logger.Warn("session store unreadable", g.logger.Args("error", err))
		return Session{}, false
	}
	if !ok {
		return Session{}, false
	}
	return Session{Raw: raw}, true
}
