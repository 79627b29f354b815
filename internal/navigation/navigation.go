// Package navigation carries the "go to this view" signal the session guard emits.
// States are dotted names ("anon.login"); what a state means is up to the Navigator.
package navigation

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
)

// Known states.
const (
	AnonLogin   = "anon.login"
	PlayerLobby = "player.lobby"
)

// Navigator moves the application to a named state.
type Navigator interface {
	Navigate(state string)
}

// Func adapts a plain function to Navigator.
type Func func(state string)

// Navigate calls f(state).
func (f Func) Navigate(state string) { f(state) }

// Discard ignores every signal.
var Discard Navigator = Func(func(string) {})

// Terminal prints the next step for a state instead of routing anywhere.
type Terminal struct {
	Out io.Writer
}

// NewTerminal returns a Terminal writing to stdout.
func NewTerminal() *Terminal { return &Terminal{Out: os.Stdout} }

var hints = map[string]string{
	AnonLogin:   "Run `shipster join <nick>` to enter the lobby.",
	PlayerLobby: "You are in the lobby. Run `shipster whoami` to see your session.",
}

// Hint returns the next-step text for state, or "" for unknown states.
func Hint(state string) string { return hints[state] }

func (t *Terminal) Navigate(state string) {
	out := t.Out
	if out == nil {
		out = os.Stdout
	}
	hint := Hint(state)
	if hint == "" {
		hint = fmt.Sprintf("Next: %s", state)
	}
	fmt.Fprintln(out, pterm.FgGray.Sprint("→ "+hint))
}
