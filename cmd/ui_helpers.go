package cmd

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"atomicgo.dev/cursor"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startInlineSpinner draws frames followed by text on the current line until the
// returned stop function is called. The cursor is hidden while it spins, and the line
// is cleared on stop.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	cursor.Hide()
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
				i++
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cursor.Show()
		})
	}
}

var joinGreetings = []string{
	"🎉 Welcome aboard, %s!",
	"⚓ Anchors up, %s!",
	"🚢 You're in the lobby, %s!",
	"👋 Ahoy %s! Ready to sail?",
	"✨ Great to see you, %s!",
}

// greeting returns a random join greeting for nick.
func greeting(nick string) string {
	return fmt.Sprintf(joinGreetings[rand.Intn(len(joinGreetings))], nick)
}
