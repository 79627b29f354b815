package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "shipster/cli/internal/errors"

	"github.com/pterm/pterm"
)

// HTTP implements Client over the lobby's REST join route.
type HTTP struct {
	// baseURL is the lobby origin (e.g., "http://localhost:1337")
	baseURL  string
	joinPath string
	// client is the underlying HTTP client with configured timeout
	client *http.Client
	logger *pterm.Logger
}

// NewHTTP creates an HTTP client for the lobby.
func NewHTTP(cfg Config) *HTTP {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		joinPath: cfg.joinPath(),
		client:   &http.Client{Timeout: timeout},
		logger:   cfg.logger(),
	}
}

// Join posts {"nick": nick} to the join route.
// 200 and 201 carry the session payload; any other status is a rejection.
func (h *HTTP) Join(ctx context.Context, nick string) (map[string]any, error) {
	body, err := json.Marshal(map[string]string{"nick": nick})
	if err != nil {
		return nil, err
	}

	url := h.baseURL + h.joinPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.BackendUnreachable, "build join request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	h.logger.Debug("join request", h.logger.Args("transport", "http", "url", url))

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.BackendUnreachable, "join request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		h.logger.Debug("join rejected", h.logger.Args("status", resp.StatusCode))
		return nil, apperrors.Rejected(resp.StatusCode, fmt.Sprintf("%d %s", resp.StatusCode, rejectionMessage(b)))
	}

	return decodePayload(resp.Body)
}

// Close is a no-op; the underlying http.Client keeps no per-client resources.
func (h *HTTP) Close() error { return nil }
