// Package terminal holds the few raw terminal operations the CLI needs: reading a
// prompted value and erasing the prompt afterwards.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of stdout, or 80 when unknown.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// LinesUsed returns how many rows textLength characters occupy at the given width,
// plus the empty row the cursor lands on after Enter.
func LinesUsed(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	lines := (textLength + width - 1) / width
	if lines < 1 {
		lines = 1
	}
	return lines + 1
}

// ClearPreviousLines erases the rows used by a prompt and its answer.
func ClearPreviousLines(w io.Writer, textLength int) {
	n := LinesUsed(textLength, Width())
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}

// Prompt writes label to w, reads one line from r and returns it trimmed.
// When erase is set, the prompt and the answer are erased afterwards.
func Prompt(w io.Writer, r io.Reader, label string, erase bool) (string, error) {
	fmt.Fprint(w, label)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	answer := strings.TrimSpace(line)
	if erase {
		ClearPreviousLines(w, utf8.RuneCountInString(label)+utf8.RuneCountInString(answer))
	}
	return answer, nil
}
