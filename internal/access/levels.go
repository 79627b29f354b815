// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package access defines the access levels used to restrict lobby commands and routes.
// The check itself is done against the currently signed in player by the auth guard.
package access

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is the tier required to reach a route or command.
type Level int

const (
	// Anonymous routes are open to everyone.
	Anonymous Level = 0
	// Player routes require a joined session.
	Player Level = 1
)

func (l Level) String() string {
	switch l {
	case Anonymous:
		return "anon"
	case Player:
		return "player"
	default:
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
}

// Parse accepts a level name (anon, anonymous, player) or its integer value.
// Unknown integers are returned as-is; the guard treats every level other than
// Player as open.
func Parse(s string) (Level, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "anon", "anonymous":
		return Anonymous, nil
	case "player":
		return Player, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return Anonymous, fmt.Errorf("unknown access level %q (use anon, player, or a number)", s)
	}
	return Level(n), nil
}
