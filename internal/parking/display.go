package parking

import (
	"fmt"
	"io"
	"sync"
)

// Display renders each event as one line of text.
type Display struct {
	mu sync.Mutex
	w  io.Writer
}

// NewDisplay returns a display writing to w.
func NewDisplay(w io.Writer) *Display {
	return &Display{w: w}
}

// Notify implements Subscriber.
func (d *Display) Notify(evt Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = fmt.Fprintln(d.w, Format(evt))
}

// Format returns the display line for evt.
func Format(evt Event) string {
	verb := "left"
	if evt.Action == ActionEnter {
		verb = "entered"
	}
	return fmt.Sprintf("A car %s the lot %s: %d/%d occupied.", verb, evt.Name, evt.Occupied, evt.Capacity)
}
