package hotkey

import (
	"sort"
	"time"

	"voiceinput/internal/input"
)

// Action identifies which configured combo fired.
type Action int

const (
	ActionToggle Action = iota + 1
	ActionCancel
)

func (a Action) String() string {
	switch a {
	case ActionToggle:
		return "toggle"
	case ActionCancel:
		return "cancel"
	}
	return "unknown"
}

// Trigger is emitted once per rising edge of a combo.
type Trigger struct {
	Action Action
	Time   time.Time
}

type binding struct {
	action Action
	combo  Combo
	active bool
	last   time.Time
}

// Detector tracks held keys and reports combo rising edges. It is not
// safe for concurrent use; feed it from a single goroutine.
type Detector struct {
	debounce time.Duration
	held     map[uint16]string
	bindings []*binding
}

// NewDetector returns a detector for the toggle combo. Triggers closer
// than debounce to the previous trigger of the same action are dropped.
func NewDetector(toggle Combo, debounce time.Duration) *Detector {
	d := &Detector{
		debounce: debounce,
		held:     make(map[uint16]string),
	}
	d.Bind(ActionToggle, toggle)
	return d
}

// Bind adds another combo. Bindings are evaluated in the order added.
func (d *Detector) Bind(action Action, c Combo) {
	d.bindings = append(d.bindings, &binding{action: action, combo: c})
}

// Observe applies one key transition and returns a trigger when a combo
// goes from not held to held.
func (d *Detector) Observe(ev input.KeyEvent) (Trigger, bool) {
	switch ev.Edge {
	case input.Pressed:
		d.held[ev.Code] = ev.Key
	case input.Released:
		delete(d.held, ev.Code)
	}

	var (
		out   Trigger
		fired bool
	)
	for _, b := range d.bindings {
		now := b.combo.satisfiedBy(d.held)
		rising := now && !b.active
		b.active = now
		if !rising || fired {
			continue
		}
		if !b.last.IsZero() && ev.Time.Sub(b.last) < d.debounce {
			continue
		}
		b.last = ev.Time
		out = Trigger{Action: b.action, Time: ev.Time}
		fired = true
	}
	return out, fired
}

// Held returns the logical names of currently held keys.
func (d *Detector) Held() []string {
	seen := make(map[string]struct{}, len(d.held))
	out := make([]string, 0, len(d.held))
	for _, name := range d.held {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
