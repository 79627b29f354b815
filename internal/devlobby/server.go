// Package devlobby is a development stand-in for the lobby backend. It accepts a nick
// on the join route and answers with {"id", "nick", "token"}, over HTTP, over the
// lobby socket, and over gRPC, so the CLI and its tests have a realistic peer.
//
// Tokens are HS256 JWTs. The client never verifies them.
package devlobby

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"shipster/cli/internal/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"
)

// Routes served by Handler.
const (
	JoinPath   = "/game/joinLobby"
	SocketPath = "/socket"
	HealthPath = "/health"
)

// Options configures a Server.
type Options struct {
	// Secret signs issued tokens; empty means a random per-process secret.
	Secret []byte
	// TokenTTL is the lifetime written into "exp"; zero means 24 hours.
	TokenTTL time.Duration
	// MaxPlayers caps distinct nicks; zero means unlimited.
	MaxPlayers int
	Logger     *pterm.Logger
	// AccessLog receives Apache-style request lines; nil discards them.
	AccessLog io.Writer
}

// Server is the dev lobby.
type Server struct {
	opts     Options
	logger   *pterm.Logger
	upgrader websocket.Upgrader
	now      func() time.Time

	mu      sync.Mutex
	players map[string]string // nick -> player id
}

// New creates a Server.
func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte(uuid.NewString())
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.AccessLog == nil {
		opts.AccessLog = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		opts:   opts,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		now:     time.Now,
		players: make(map[string]string),
	}
}

// joinError is a refusal with the HTTP status that describes it.
type joinError struct {
	status int
	msg    string
}

func (e *joinError) Error() string { return e.msg }

// join registers nick (or finds its existing id) and issues a token.
func (s *Server) join(nick string) (map[string]any, error) {
	nick = strings.TrimSpace(nick)
	if nick == "" {
		return nil, &joinError{status: http.StatusBadRequest, msg: "nick is required"}
	}

	s.mu.Lock()
	id, ok := s.players[nick]
	if !ok {
		if s.opts.MaxPlayers > 0 && len(s.players) >= s.opts.MaxPlayers {
			s.mu.Unlock()
			return nil, &joinError{status: http.StatusForbidden, msg: "lobby is full"}
		}
		id = uuid.NewString()
		s.players[nick] = id
	}
	s.mu.Unlock()

	now := s.now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":  "shipster-devlobby",
		"sub":  id,
		"nick": nick,
		"iat":  now.Unix(),
		"exp":  now.Add(s.opts.TokenTTL).Unix(),
	}).SignedString(s.opts.Secret)
	if err != nil {
		return nil, err
	}

	s.logger.Info("player joined", s.logger.Args("nick", nick, "id", id))
	return map[string]any{"id": id, "nick": nick, "token": token}, nil
}

// Players returns the number of distinct nicks that joined.
func (s *Server) Players() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// Handler returns the HTTP and socket routes with access logging and panic recovery.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(JoinPath, s.handleJoin).Methods(http.MethodPost)
	r.HandleFunc(SocketPath, s.handleSocket).Methods(http.MethodGet)
	r.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "players": s.Players()})
	}).Methods(http.MethodGet)
	return handlers.RecoveryHandler()(handlers.LoggingHandler(s.opts.AccessLog, r))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nick string `json:"nick"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "body must be a JSON object with a nick"})
		return
	}
	status, body := s.dispatchJoin(req.Nick)
	writeJSON(w, status, body)
}

// dispatchJoin runs join and maps the outcome to a status and a JSON body.
func (s *Server) dispatchJoin(nick string) (int, any) {
	payload, err := s.join(nick)
	if err != nil {
		if je, ok := err.(*joinError); ok {
			return je.status, map[string]string{"message": je.msg}
		}
		s.logger.Error("join failed", s.logger.Args("error", err))
		return http.StatusInternalServerError, map[string]string{"message": "internal error"}
	}
	return http.StatusOK, payload
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
