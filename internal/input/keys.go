package input

import (
	"fmt"
	"strings"
)

var aliases = map[string]string{
	"super": "super", "win": "super", "meta": "super", "cmd": "super", "command": "super",
	"lcmd": "super", "rcmd": "super", "leftmeta": "super", "rightmeta": "super",
	"shift": "shift", "lshift": "shift", "rshift": "shift", "leftshift": "shift", "rightshift": "shift",
	"ctrl": "ctrl", "control": "ctrl", "lctrl": "ctrl", "rctrl": "ctrl", "leftctrl": "ctrl", "rightctrl": "ctrl",
	"alt": "alt", "menu": "alt", "option": "alt", "lalt": "alt", "ralt": "alt", "leftalt": "alt", "rightalt": "alt",
	"esc": "esc", "escape": "esc",
	"enter": "enter", "return": "enter",
	"space": "space", "tab": "tab", "backspace": "backspace",
	"insert": "insert", "delete": "delete", "home": "home", "end": "end",
	"pageup": "pageup", "pagedown": "pagedown",
	"left": "left", "up": "up", "right": "right", "down": "down",
}

// Canonical returns the logical key name for a user- or backend-supplied
// name, e.g. "Win" -> "super", "lctrl" -> "ctrl", "F5" -> "f5".
func Canonical(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}
	if v, ok := aliases[n]; ok {
		return v, true
	}
	if len(n) == 1 {
		ch := n[0]
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			return n, true
		}
	}
	if strings.HasPrefix(n, "f") {
		var num int
		if _, err := fmt.Sscanf(n, "f%d", &num); err == nil && num >= 1 && num <= 24 && n == fmt.Sprintf("f%d", num) {
			return n, true
		}
	}
	return "", false
}

// IsModifier reports whether the logical key is a modifier.
func IsModifier(key string) bool {
	switch key {
	case "super", "shift", "ctrl", "alt":
		return true
	}
	return false
}

func unknownKey(code uint16) string {
	return fmt.Sprintf("key_%d", code)
}
