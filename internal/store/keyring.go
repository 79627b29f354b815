// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Keyring stores values in the OS credential store (macOS Keychain, Windows
// Credential Manager, Secret Service, KWallet or pass).
type Keyring struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewKeyring wraps an already opened keyring. Tests pass keyring.NewArrayKeyring.
func NewKeyring(ring keyring.Keyring) *Keyring {
	return &Keyring{ring: ring}
}

// OpenKeyring opens the OS keyring using native platform backends only.
// There is no encrypted-file fallback: a machine without a native store must pick
// another backend (sqlite, redis, postgres).
func OpenKeyring() (*Keyring, error) {
	ring, err := keyring.Open(ringConfig(runtime.GOOS))
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. Install 'pass' (brew install pass gnupg) or use --store sqlite")
		}
		return nil, err
	}
	return NewKeyring(ring), nil
}

// ringConfig returns the keyring configuration for the given OS.
func ringConfig(goos string) keyring.Config {
	var allowed []keyring.BackendType
	switch goos {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
	}
	// Hint prefixes where supported to minimize namespace collisions
	if goos == "windows" {
		cfg.WinCredPrefix = ServiceName
	}
	return cfg
}

func (k *Keyring) Get(_ context.Context, key string) (string, bool, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	it, err := k.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(it.Data), true, nil
}

func (k *Keyring) Set(_ context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       ServiceName + " " + key,
		Description: "shipster lobby session",
	})
}

func (k *Keyring) Unset(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
