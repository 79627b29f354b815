// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package store provides the key-value storage that keeps the session token between runs.
// Every backend implements Store with the same contract: a missing key is reported as
// absent (ok == false) without an error, and removing a missing key succeeds.
//
// Backends are safe for concurrent use. Concurrent writers are not coordinated beyond
// the atomicity of a single write; the last write to complete wins.
package store

import (
	"context"
	"sync"
)

// KeySessionToken is the fixed key under which the joined session is stored.
const KeySessionToken = "auth_token"

// ServiceName namespaces keys in shared stores (keyring service, redis prefix, table names).
const ServiceName = "shipster"

// Store is a string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Unset(ctx context.Context, key string) error
}

// Memory is a process-local Store. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Unset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
