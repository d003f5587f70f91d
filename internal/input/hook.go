package input

import (
	"context"
	"sort"
	"time"

	hook "github.com/robotn/gohook"
)

// HookSource reads key events through the gohook global hook. It works
// under X11 and on platforms without evdev, at the cost of needing a
// display connection.
type HookSource struct {
	names map[uint16]string
}

func NewHookSource() *HookSource {
	return &HookSource{names: hookNames(hook.Keycode)}
}

func (s *HookSource) Name() string { return "gohook" }

func (s *HookSource) Run(ctx context.Context, out chan<- KeyEvent) error {
	events := hook.Start()
	defer hook.End()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			ke, ok := s.translate(ev)
			if !ok {
				continue
			}
			select {
			case out <- ke:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (s *HookSource) translate(ev hook.Event) (KeyEvent, bool) {
	var edge Edge
	switch ev.Kind {
	case hook.KeyHold:
		edge = Pressed
	case hook.KeyUp:
		edge = Released
	default:
		// KeyDown is the synthesized "typed" event and repeats while held
		return KeyEvent{}, false
	}
	name, ok := s.names[ev.Keycode]
	if !ok {
		name = unknownKey(ev.Keycode)
	}
	when := ev.When
	if when.IsZero() {
		when = time.Now()
	}
	return KeyEvent{Code: ev.Keycode, Key: name, Edge: edge, Time: when}, true
}

// hookNames inverts a name->code table into code->logical name. Names
// are visited in sorted order so aliases resolve deterministically.
func hookNames(table map[string]uint16) map[uint16]string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[uint16]string, len(table))
	for _, k := range keys {
		code := table[k]
		if _, seen := out[code]; seen {
			continue
		}
		if name, ok := Canonical(k); ok {
			out[code] = name
		}
	}
	return out
}
