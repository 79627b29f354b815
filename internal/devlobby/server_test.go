package devlobby

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var testSecret = []byte("devlobby-test-secret")

func postJoin(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+JoinPath, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, out
}

func TestJoinIssuesSignedToken(t *testing.T) {
	s := New(Options{Secret: testSecret, TokenTTL: time.Hour})
	fixed := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return fixed }

	payload, err := s.join("  alice ")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if payload["nick"] != "alice" {
		t.Errorf("nick = %v, want alice", payload["nick"])
	}

	tok, err := jwt.Parse(payload["token"].(string), func(*jwt.Token) (any, error) { return testSecret, nil },
		jwt.WithTimeFunc(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["sub"] != payload["id"] {
		t.Errorf("sub = %v, want %v", claims["sub"], payload["id"])
	}
	if claims["nick"] != "alice" {
		t.Errorf("nick claim = %v", claims["nick"])
	}
	if exp, _ := claims.GetExpirationTime(); !exp.Equal(fixed.Add(time.Hour)) {
		t.Errorf("exp = %v, want %v", exp, fixed.Add(time.Hour))
	}
}

func TestJoinKeepsPlayerID(t *testing.T) {
	s := New(Options{})
	first, err := s.join("bob")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.join("bob")
	if err != nil {
		t.Fatal(err)
	}
	if first["id"] != second["id"] {
		t.Errorf("rejoin changed id: %v -> %v", first["id"], second["id"])
	}
	if s.Players() != 1 {
		t.Errorf("Players() = %d, want 1", s.Players())
	}
}

func TestHTTPJoin(t *testing.T) {
	s := New(Options{Secret: testSecret, MaxPlayers: 1})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"ok", `{"nick":"alice"}`, http.StatusOK, ""},
		{"rejoin", `{"nick":"alice"}`, http.StatusOK, ""},
		{"empty nick", `{"nick":""}`, http.StatusBadRequest, "nick is required"},
		{"malformed", `nick=alice`, http.StatusBadRequest, "body must be a JSON object with a nick"},
		{"full", `{"nick":"carol"}`, http.StatusForbidden, "lobby is full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := postJoin(t, srv.URL, tt.body)
			if code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%v)", code, tt.wantStatus, out)
			}
			if tt.wantMsg != "" && out["message"] != tt.wantMsg {
				t.Errorf("message = %v, want %q", out["message"], tt.wantMsg)
			}
			if tt.wantMsg == "" {
				if _, ok := out["token"].(string); !ok {
					t.Errorf("missing token in %v", out)
				}
			}
		})
	}
}

func TestHTTPRoutes(t *testing.T) {
	srv := httptest.NewServer(New(Options{}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + JoinPath)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET join status = %d, want 405", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + HealthPath)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	srv := httptest.NewServer(New(Options{AccessLog: &buf}).Handler())
	defer srv.Close()

	postJoin(t, srv.URL, `{"nick":"dave"}`)
	if !strings.Contains(buf.String(), "POST "+JoinPath) {
		t.Errorf("access log missing request line: %q", buf.String())
	}
}

func TestSocketJoin(t *testing.T) {
	srv := httptest.NewServer(New(Options{}).Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+SocketPath, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	tests := []struct {
		name       string
		req        map[string]any
		wantStatus int
	}{
		{"join", map[string]any{"id": "1", "method": "post", "url": JoinPath, "data": map[string]any{"nick": "erin"}}, http.StatusOK},
		{"uppercase method", map[string]any{"id": "2", "method": "POST", "url": JoinPath, "data": map[string]any{"nick": "erin"}}, http.StatusOK},
		{"empty nick", map[string]any{"id": "3", "method": "post", "url": JoinPath, "data": map[string]any{"nick": ""}}, http.StatusBadRequest},
		{"unknown route", map[string]any{"id": "4", "method": "get", "url": "/game/list"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteJSON(tt.req); err != nil {
				t.Fatalf("write: %v", err)
			}
			var resp socketResponse
			if err := conn.ReadJSON(&resp); err != nil {
				t.Fatalf("read: %v", err)
			}
			if resp.ID != tt.req["id"] {
				t.Errorf("id = %q, want %q", resp.ID, tt.req["id"])
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("statusCode = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestGRPCJoin(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	gs := grpc.NewServer()
	New(Options{MaxPlayers: 1}).RegisterGRPC(gs)
	go func() { _ = gs.Serve(lis) }()
	defer gs.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	call := func(nick string) (*structpb.Struct, error) {
		in, _ := structpb.NewStruct(map[string]any{"nick": nick})
		out := new(structpb.Struct)
		return out, conn.Invoke(ctx, grpcJoinMethod, in, out)
	}

	out, err := call("frank")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if out.GetFields()["nick"].GetStringValue() != "frank" {
		t.Errorf("nick = %v", out.AsMap()["nick"])
	}

	if _, err := call(""); status.Code(err) != codes.InvalidArgument {
		t.Errorf("empty nick code = %v, want InvalidArgument", status.Code(err))
	}
	if _, err := call("grace"); status.Code(err) != codes.ResourceExhausted {
		t.Errorf("full lobby code = %v, want ResourceExhausted", status.Code(err))
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(Options{}).ListenAndServe(ctx, "127.0.0.1:0", "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
