// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shipster/cli/internal/access"
	"shipster/cli/internal/backend"
	apperrors "shipster/cli/internal/errors"
	"shipster/cli/internal/navigation"
	"shipster/cli/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pterm/pterm"
)

// stubJoiner answers every Join with payload or err and counts calls.
type stubJoiner struct {
	mu      sync.Mutex
	payload map[string]any
	err     error
	calls   []string
}

func (s *stubJoiner) Join(_ context.Context, nick string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, nick)
	return s.payload, s.err
}

// recorder collects navigation signals.
type recorder struct {
	mu     sync.Mutex
	states []string
}

func (r *recorder) Navigate(state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

// brokenStore fails every operation.
type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string) (string, bool, error) { return "", false, b.err }
func (b brokenStore) Set(context.Context, string, string) error         { return b.err }
func (b brokenStore) Unset(context.Context, string) error               { return b.err }

func TestScenario(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	nav := &recorder{}
	joiner := &stubJoiner{payload: map[string]any{"id": 1, "token": "abc"}}
	g := NewGuard(mem, joiner, nav)

	if g.IsAuthenticated(ctx) {
		t.Fatal("empty store reports authenticated")
	}

	sess, err := g.Login(ctx, "alice")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(joiner.calls) != 1 || joiner.calls[0] != "alice" {
		t.Errorf("join calls = %v, want [alice]", joiner.calls)
	}

	raw, ok, _ := mem.Get(ctx, "auth_token")
	if !ok {
		t.Fatal("auth_token not stored")
	}
	if raw != `{"id":1,"token":"abc"}` {
		t.Errorf("stored = %s", raw)
	}
	if sess.Raw != raw {
		t.Errorf("returned session %q differs from stored %q", sess.Raw, raw)
	}
	if !g.IsAuthenticated(ctx) {
		t.Error("not authenticated after login")
	}
	if !g.Authorize(ctx, access.Player) {
		t.Error("Authorize(player) = false after login")
	}

	g.Logout(ctx)

	if mem.Len() != 0 {
		t.Errorf("store not empty after logout: %d keys", mem.Len())
	}
	if g.IsAuthenticated(ctx) {
		t.Error("authenticated after logout")
	}
	if len(nav.states) != 1 || nav.states[0] != navigation.AnonLogin {
		t.Errorf("navigation = %v, want [%s]", nav.states, navigation.AnonLogin)
	}
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	levels := []access.Level{access.Anonymous, access.Player, access.Level(2), access.Level(-1)}

	for _, loggedIn := range []bool{false, true} {
		mem := store.NewMemory()
		if loggedIn {
			_ = mem.Set(ctx, store.KeySessionToken, `{}`)
		}
		g := NewGuard(mem, &stubJoiner{}, nil)

		for _, lvl := range levels {
			want := true
			if lvl == access.Player {
				want = loggedIn
			}
			if got := g.Authorize(ctx, lvl); got != want {
				t.Errorf("loggedIn=%v Authorize(%s) = %v, want %v", loggedIn, lvl, got, want)
			}
			if lvl == access.Player && g.Authorize(ctx, lvl) != g.IsAuthenticated(ctx) {
				t.Errorf("Authorize(player) disagrees with IsAuthenticated")
			}
		}
	}
}

func TestPresenceIsTheOnlySignal(t *testing.T) {
	ctx := context.Background()
	for _, v := range []string{"", "not json", `{"token":"expired.jwt.value"}`} {
		mem := store.NewMemory()
		_ = mem.Set(ctx, store.KeySessionToken, v)
		if !NewGuard(mem, nil, nil).IsAuthenticated(ctx) {
			t.Errorf("stored %q not treated as authenticated", v)
		}
	}
}

func TestLoginFailureLeavesState(t *testing.T) {
	ctx := context.Background()
	joinErr := apperrors.Wrap(apperrors.BackendUnreachable, "join request failed", errors.New("connection refused"))

	tests := []struct {
		name  string
		prior string
	}{
		{"logged out", ""},
		{"logged in", `{"id":9,"token":"old"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			if tt.prior != "" {
				_ = mem.Set(ctx, store.KeySessionToken, tt.prior)
			}
			g := NewGuard(mem, &stubJoiner{err: joinErr}, nil)
			before := g.IsAuthenticated(ctx)

			_, err := g.Login(ctx, "alice")
			if err != joinErr {
				t.Fatalf("Login error = %v, want the joiner's error unchanged", err)
			}
			if g.IsAuthenticated(ctx) != before {
				t.Error("authentication state changed after failed login")
			}
			raw, _, _ := mem.Get(ctx, store.KeySessionToken)
			if raw != tt.prior {
				t.Errorf("stored = %q, want %q", raw, tt.prior)
			}
		})
	}
}

func TestLoginOverwrites(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	joiner := &stubJoiner{payload: map[string]any{"id": 1, "token": "first"}}
	g := NewGuard(mem, joiner, nil)

	if _, err := g.Login(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	joiner.payload = map[string]any{"id": 2, "token": "second"}
	if _, err := g.Login(ctx, "bob"); err != nil {
		t.Fatal(err)
	}

	raw, _, _ := mem.Get(ctx, store.KeySessionToken)
	if raw != `{"id":2,"token":"second"}` {
		t.Errorf("stored = %s", raw)
	}
	if mem.Len() != 1 {
		t.Errorf("store has %d keys, want 1", mem.Len())
	}
}

func TestLoginStoreFailure(t *testing.T) {
	g := NewGuard(brokenStore{err: errors.New("disk full")}, &stubJoiner{payload: map[string]any{"token": "abc"}}, nil)
	_, err := g.Login(context.Background(), "alice")
	if !apperrors.Is(err, apperrors.StoreFailed) {
		t.Fatalf("err = %v, want StoreFailed", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("cause missing from %q", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	nav := &recorder{}
	g := NewGuard(store.NewMemory(), &stubJoiner{}, nav)

	g.Logout(ctx)
	g.Logout(ctx)

	if g.IsAuthenticated(ctx) {
		t.Error("authenticated after logout")
	}
	if len(nav.states) != 2 {
		t.Errorf("navigation signals = %v, want two", nav.states)
	}
}

func TestStoreErrorsNeverEscape(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	logger := pterm.DefaultLogger.WithWriter(&logs).WithLevel(pterm.LogLevelWarn)
	nav := &recorder{}
	g := NewGuard(brokenStore{err: errors.New("keyring locked")}, &stubJoiner{}, nav, WithLogger(logger))

	if g.IsAuthenticated(ctx) {
		t.Error("unreadable store reported authenticated")
	}
	if g.Authorize(ctx, access.Player) {
		t.Error("unreadable store authorized player")
	}
	if !g.Authorize(ctx, access.Anonymous) {
		t.Error("anonymous denied")
	}
	if _, ok := g.Session(ctx); ok {
		t.Error("Session() ok on unreadable store")
	}

	g.Logout(ctx)
	if len(nav.states) != 1 || nav.states[0] != navigation.AnonLogin {
		t.Errorf("navigation = %v after failed unset", nav.states)
	}
	if !strings.Contains(logs.String(), "keyring locked") {
		t.Errorf("store error not logged: %q", logs.String())
	}
}

func TestWithKey(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	g := NewGuard(mem, &stubJoiner{payload: map[string]any{"id": 1}}, nil, WithKey("other"))

	if _, err := g.Login(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := mem.Get(ctx, "other"); !ok {
		t.Error("session not stored under custom key")
	}
	if _, ok, _ := mem.Get(ctx, store.KeySessionToken); ok {
		t.Error("session stored under default key")
	}
}

func TestConcurrentLogins(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	g := NewGuard(mem, &stubJoiner{payload: map[string]any{"token": "abc"}}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = g.Login(ctx, "alice")
		}()
	}
	wg.Wait()

	if !g.IsAuthenticated(ctx) || mem.Len() != 1 {
		t.Errorf("authenticated=%v keys=%d", g.IsAuthenticated(ctx), mem.Len())
	}
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "p-1",
		"nick": "alice",
		"exp":  now.Add(-time.Hour).Unix(),
	}).SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatal(err)
	}

	mem := store.NewMemory()
	g := NewGuard(mem, &stubJoiner{payload: map[string]any{"id": 7, "nick": "alice", "token": tok}}, nil)
	if _, ok := g.Session(ctx); ok {
		t.Fatal("Session() ok before login")
	}
	if _, err := g.Login(ctx, "alice"); err != nil {
		t.Fatal(err)
	}

	sess, ok := g.Session(ctx)
	if !ok {
		t.Fatal("Session() not ok after login")
	}
	if sess.ID() != "7" || sess.Nick() != "alice" || sess.Credential() != tok {
		t.Errorf("id=%q nick=%q credential=%q", sess.ID(), sess.Nick(), sess.Credential())
	}

	// Expired and signed with an unknown key: still decoded, since nothing is verified.
	claims, err := sess.Claims()
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims["sub"] != "p-1" {
		t.Errorf("sub = %v", claims["sub"])
	}
}

func TestSessionWithoutCredential(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr error
	}{
		{`{"id":1}`, ErrNoCredential},
		{`not json`, ErrNoCredential},
		{`{"token":"opaque"}`, nil},
	}
	for _, tt := range tests {
		_, err := Session{Raw: tt.raw}.Claims()
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("Claims(%s) err = %v, want %v", tt.raw, err, tt.wantErr)
		}
		if tt.wantErr == nil && err == nil {
			t.Errorf("Claims(%s) decoded a non-JWT credential", tt.raw)
		}
	}
}

func TestLoginStoresResponseVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Authorization", "Bearer from-header")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":9007199254740993,"nick":"alice"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	mem := store.NewMemory()
	g := NewGuard(mem, backend.NewHTTP(backend.Config{BaseURL: srv.URL}), nil)

	if _, err := g.Login(ctx, "alice"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	raw, _, _ := mem.Get(ctx, store.KeySessionToken)
	if want := `{"id":9007199254740993,"nick":"alice"}`; raw != want {
		t.Errorf("stored = %s, want %s", raw, want)
	}
}
