// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the clients that submit a nick to the lobby's join endpoint.
// Three transports are available: plain HTTP JSON, a WebSocket virtual request (the
// lobby's browser client talks over a socket), and gRPC. All of them return the
// lobby's success payload untouched, as a JSON object.
//
// Failures are classified with internal/errors kinds: BackendUnreachable when the
// lobby could not be reached, JoinRejected when it answered with a failure, and
// InvalidResponse when the answer was not a JSON object. Nothing is retried.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"shipster/cli/internal/config"
	apperrors "shipster/cli/internal/errors"
	"shipster/cli/internal/logging"

	"github.com/pterm/pterm"
)

// DefaultJoinPath is the lobby route that accepts {"nick": ...}.
const DefaultJoinPath = "/game/joinLobby"

// Client submits a nick to the lobby.
// Implementations may call real HTTP/WS/gRPC endpoints or provide mocks for tests.
type Client interface {
	// Join returns the lobby's success payload (user identity plus credential).
	Join(ctx context.Context, nick string) (map[string]any, error)
	Close() error
}

// Config carries the connection settings shared by every transport.
type Config struct {
	// BaseURL is the lobby origin for HTTP and socket transports (e.g. "http://localhost:1337").
	BaseURL string
	// JoinPath is the join route; empty means DefaultJoinPath.
	JoinPath string
	// GRPCAddr is host:port, optionally prefixed with grpc:// or grpcs://.
	GRPCAddr string
	// Timeout bounds each HTTP request; zero means 10 seconds.
	Timeout time.Duration
	Logger  *pterm.Logger
}

func (c Config) joinPath() string {
	if c.JoinPath == "" {
		return DefaultJoinPath
	}
	return "/" + strings.TrimLeft(c.JoinPath, "/")
}

func (c Config) logger() *pterm.Logger {
	if c.Logger == nil {
		return logging.Discard()
	}
	return c.Logger
}

// New creates the client for the named transport.
func New(transport string, cfg Config) (Client, error) {
	switch transport {
	case config.TransportHTTP, "":
		return NewHTTP(cfg), nil
	case config.TransportSocket:
		return NewSocket(cfg), nil
	case config.TransportGRPC:
		return DialGRPC(cfg)
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

// rejectionMessage extracts a human message from a failure body.
// Be liberal in what we accept: {"message"}, {"error"}, a JSON string, or plain text.
func rejectionMessage(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, k := range []string{"message", "error", "reason"} {
			if v, ok := obj[k].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	var s string
	if err := json.Unmarshal(body, &s); err == nil && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return "no reason given"
}

// decodePayload reads the lobby's success body. Numbers are kept as json.Number so
// ids pass through to the store exactly as sent.
func decodePayload(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidResponse, "decode join response", err)
	}
	if payload == nil {
		return nil, apperrors.New(apperrors.InvalidResponse, "join response is not a JSON object")
	}
	return payload, nil
}
