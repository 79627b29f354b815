package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	apperrors "shipster/cli/internal/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"
)

// SocketPath is the lobby's WebSocket endpoint.
const SocketPath = "/socket"

// VirtualRequest is an HTTP-style request carried over the lobby socket.
type VirtualRequest struct {
	ID     string         `json:"id"`
	Method string         `json:"method"`
	URL    string         `json:"url"`
	Data   map[string]any `json:"data,omitempty"`
}

// VirtualResponse answers the VirtualRequest with the same ID.
type VirtualResponse struct {
	ID         string          `json:"id"`
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

// Socket implements Client by sending a virtual POST over a WebSocket.
// Each Join opens its own connection and closes it when the answer arrives.
type Socket struct {
	socketURL string
	joinPath  string
	dialer    *websocket.Dialer
	logger    *pterm.Logger
}

// NewSocket creates a WebSocket client for the lobby.
func NewSocket(cfg Config) *Socket {
	return &Socket{
		socketURL: socketURL(cfg.BaseURL),
		joinPath:  cfg.joinPath(),
		dialer:    websocket.DefaultDialer,
		logger:    cfg.logger(),
	}
}

// socketURL maps the lobby origin to its ws:// or wss:// socket endpoint.
func socketURL(base string) string {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return base + SocketPath
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + SocketPath
	return u.String()
}

// Join sends {"method":"post","url":joinPath,"data":{"nick":nick}} and waits for the
// response envelope carrying the same id. Unrelated frames are skipped.
func (s *Socket) Join(ctx context.Context, nick string) (map[string]any, error) {
	s.logger.Debug("join request", s.logger.Args("transport", "socket", "url", s.socketURL))

	conn, resp, err := s.dialer.DialContext(ctx, s.socketURL, nil)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (handshake status %d)", err, resp.StatusCode)
		}
		return nil, apperrors.Wrap(apperrors.BackendUnreachable, "open lobby socket", err)
	}
	defer conn.Close()

	// Unblock reads when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	req := VirtualRequest{
		ID:     uuid.NewString(),
		Method: "post",
		URL:    s.joinPath,
		Data:   map[string]any{"nick": nick},
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, apperrors.Wrap(apperrors.BackendUnreachable, "send join request", ctxErr(ctx, err))
	}

	var out VirtualResponse
	for {
		out = VirtualResponse{}
		if err := conn.ReadJSON(&out); err != nil {
			if isDecodeError(err) {
				return nil, apperrors.Wrap(apperrors.InvalidResponse, "decode socket frame", err)
			}
			return nil, apperrors.Wrap(apperrors.BackendUnreachable, "read join response", ctxErr(ctx, err))
		}
		if out.ID == req.ID {
			break
		}
		s.logger.Trace("skipping socket frame", s.logger.Args("id", out.ID))
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	if out.StatusCode >= 400 {
		return nil, apperrors.Rejected(out.StatusCode, fmt.Sprintf("%d %s", out.StatusCode, rejectionMessage(out.Body)))
	}

	return decodePayload(bytes.NewReader(out.Body))
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// ctxErr prefers the context's error when it caused err.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Close is a no-op; connections live only for the duration of a Join.
func (s *Socket) Close() error { return nil }
