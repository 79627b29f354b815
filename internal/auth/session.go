package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the stored join payload, kept as the exact JSON that was written.
type Session struct {
	Raw string
}

// Fields decodes the payload.
func (s Session) Fields() (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s.Raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s Session) str(key string) string {
	m, err := s.Fields()
	if err != nil {
		return ""
	}
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// ID is the player id from the payload, or "".
func (s Session) ID() string { return s.str("id") }

// Nick is the player nick from the payload, or "".
func (s Session) Nick() string { return s.str("nick") }

// Credential is the token string from the payload, or "".
func (s Session) Credential() string { return s.str("token") }

// ErrNoCredential is returned by Claims when the payload carries no token.
var ErrNoCredential = errors.New("session has no credential")

// Claims decodes the credential as a JWT without verifying it. The result is for
// display only.
func (s Session) Claims() (jwt.MapClaims, error) {
	tok := s.Credential()
	if tok == "" {
		return nil, ErrNoCredential
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
