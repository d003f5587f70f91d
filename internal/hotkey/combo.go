// Package hotkey turns a stream of key transitions into hotkey triggers.
package hotkey

import (
	"fmt"
	"sort"
	"strings"

	"voiceinput/internal/input"
)

// Combo is an immutable set of logical keys that must be held together.
type Combo struct {
	keys map[string]struct{}
}

// ParseCombo parses strings such as "super+shift+v" or "ctrl+alt+f9".
// Key names are case-insensitive and common aliases (win, meta, control)
// are accepted.
func ParseCombo(s string) (Combo, error) {
	if strings.TrimSpace(s) == "" {
		return Combo{}, fmt.Errorf("empty key")
	}
	keys := make(map[string]struct{})
	for _, p := range strings.Split(s, "+") {
		name, ok := input.Canonical(p)
		if !ok {
			return Combo{}, fmt.Errorf("invalid hotkey '%s': unknown key '%s'", s, strings.TrimSpace(p))
		}
		if _, dup := keys[name]; dup {
			return Combo{}, fmt.Errorf("invalid hotkey '%s': '%s' listed twice", s, name)
		}
		keys[name] = struct{}{}
	}
	return Combo{keys: keys}, nil
}

// Keys returns the combo's keys, modifiers first.
func (c Combo) Keys() []string {
	out := make([]string, 0, len(c.keys))
	for k := range c.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		mi, mj := input.IsModifier(out[i]), input.IsModifier(out[j])
		if mi != mj {
			return mi
		}
		return out[i] < out[j]
	})
	return out
}

func (c Combo) String() string {
	return strings.Join(c.Keys(), "+")
}

// satisfiedBy reports whether every required key is held by at least
// one physical key.
func (c Combo) satisfiedBy(held map[uint16]string) bool {
	if len(c.keys) == 0 {
		return false
	}
	have := make(map[string]struct{}, len(held))
	for _, name := range held {
		have[name] = struct{}{}
	}
	for k := range c.keys {
		if _, ok := have[k]; !ok {
			return false
		}
	}
	return true
}
