package devlobby

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// socketRequest and socketResponse are the virtual request envelopes exchanged on
// the lobby socket.
type socketRequest struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	URL    string          `json:"url"`
	Data   json.RawMessage `json:"data"`
}

type socketResponse struct {
	ID         string `json:"id"`
	StatusCode int    `json:"statusCode"`
	Body       any    `json:"body"`
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to accept lobby socket", s.logger.Args("error", err))
		return
	}
	defer conn.Close()

	for {
		var req socketRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("lobby socket closed", s.logger.Args("error", err))
			}
			return
		}
		if err := conn.WriteJSON(s.route(req)); err != nil {
			s.logger.Debug("failed to write socket response", s.logger.Args("error", err))
			return
		}
	}
}

// route answers one virtual request.
func (s *Server) route(req socketRequest) socketResponse {
	if !strings.EqualFold(req.Method, http.MethodPost) || req.URL != JoinPath {
		return socketResponse{ID: req.ID, StatusCode: http.StatusNotFound, Body: map[string]string{"message": "no route for " + req.Method + " " + req.URL}}
	}
	var data struct {
		Nick string `json:"nick"`
	}
	if len(req.Data) > 0 {
		if err := json.Unmarshal(req.Data, &data); err != nil {
			return socketResponse{ID: req.ID, StatusCode: http.StatusBadRequest, Body: map[string]string{"message": "data must be a JSON object with a nick"}}
		}
	}
	status, body := s.dispatchJoin(data.Nick)
	return socketResponse{ID: req.ID, StatusCode: status, Body: body}
}
