// Package input normalizes raw keyboard events from the OS into a stream of
// KeyEvent values.
package input

import (
	"context"
	"fmt"
	"time"
)

// Edge is the direction of a key transition.
type Edge int

const (
	Released Edge = iota
	Pressed
)

func (e Edge) String() string {
	if e == Pressed {
		return "pressed"
	}
	return "released"
}

// KeyEvent is a single normalized key transition. Code identifies the
// physical key (left and right Shift differ); Key is its logical name.
type KeyEvent struct {
	Code uint16
	Key  string
	Edge Edge
	Time time.Time
}

func (e KeyEvent) String() string {
	return fmt.Sprintf("%s(%d) %s", e.Key, e.Code, e.Edge)
}

// Source produces KeyEvents until ctx is cancelled or the device fails.
// Auto-repeat events are not forwarded.
type Source interface {
	Name() string
	Run(ctx context.Context, out chan<- KeyEvent) error
}

// Keyboard describes an input device that looks like a real keyboard.
type Keyboard struct {
	Path string
	Name string
}
