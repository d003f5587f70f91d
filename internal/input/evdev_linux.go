//go:build linux

package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

var evdevNames = map[evdev.EvCode]string{
	evdev.KEY_LEFTMETA: "super", evdev.KEY_RIGHTMETA: "super",
	evdev.KEY_LEFTSHIFT: "shift", evdev.KEY_RIGHTSHIFT: "shift",
	evdev.KEY_LEFTCTRL: "ctrl", evdev.KEY_RIGHTCTRL: "ctrl",
	evdev.KEY_LEFTALT: "alt", evdev.KEY_RIGHTALT: "alt",

	evdev.KEY_A: "a", evdev.KEY_B: "b", evdev.KEY_C: "c", evdev.KEY_D: "d",
	evdev.KEY_E: "e", evdev.KEY_F: "f", evdev.KEY_G: "g", evdev.KEY_H: "h",
	evdev.KEY_I: "i", evdev.KEY_J: "j", evdev.KEY_K: "k", evdev.KEY_L: "l",
	evdev.KEY_M: "m", evdev.KEY_N: "n", evdev.KEY_O: "o", evdev.KEY_P: "p",
	evdev.KEY_Q: "q", evdev.KEY_R: "r", evdev.KEY_S: "s", evdev.KEY_T: "t",
	evdev.KEY_U: "u", evdev.KEY_V: "v", evdev.KEY_W: "w", evdev.KEY_X: "x",
	evdev.KEY_Y: "y", evdev.KEY_Z: "z",

	evdev.KEY_0: "0", evdev.KEY_1: "1", evdev.KEY_2: "2", evdev.KEY_3: "3",
	evdev.KEY_4: "4", evdev.KEY_5: "5", evdev.KEY_6: "6", evdev.KEY_7: "7",
	evdev.KEY_8: "8", evdev.KEY_9: "9",

	evdev.KEY_F1: "f1", evdev.KEY_F2: "f2", evdev.KEY_F3: "f3", evdev.KEY_F4: "f4",
	evdev.KEY_F5: "f5", evdev.KEY_F6: "f6", evdev.KEY_F7: "f7", evdev.KEY_F8: "f8",
	evdev.KEY_F9: "f9", evdev.KEY_F10: "f10", evdev.KEY_F11: "f11", evdev.KEY_F12: "f12",

	evdev.KEY_ESC: "esc", evdev.KEY_SPACE: "space", evdev.KEY_ENTER: "enter",
	evdev.KEY_TAB: "tab", evdev.KEY_BACKSPACE: "backspace",
	evdev.KEY_INSERT: "insert", evdev.KEY_DELETE: "delete",
	evdev.KEY_HOME: "home", evdev.KEY_END: "end",
	evdev.KEY_PAGEUP: "pageup", evdev.KEY_PAGEDOWN: "pagedown",
	evdev.KEY_LEFT: "left", evdev.KEY_UP: "up", evdev.KEY_RIGHT: "right", evdev.KEY_DOWN: "down",
}

// ErrNoKeyboard is returned when no readable keyboard device exists.
var ErrNoKeyboard = errors.New("no keyboard device found under /dev/input (is the user in the 'input' group?)")

// ListKeyboards returns every readable input device that reports both
// KEY_A and KEY_Z, which filters out power buttons, lid switches and mice.
func ListKeyboards() ([]Keyboard, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	var out []Keyboard
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			slog.Debug("skip input device", "component", "input", "path", p.Path, "error", err)
			continue
		}
		if isKeyboard(dev) {
			out = append(out, Keyboard{Path: p.Path, Name: p.Name})
		}
		dev.Close()
	}
	return out, nil
}

func isKeyboard(dev *evdev.InputDevice) bool {
	var hasA, hasZ bool
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		switch code {
		case evdev.KEY_A:
			hasA = true
		case evdev.KEY_Z:
			hasZ = true
		}
	}
	return hasA && hasZ
}

// FindKeyboard returns the first keyboard reported by ListKeyboards.
func FindKeyboard() (Keyboard, error) {
	kbs, err := ListKeyboards()
	if err != nil {
		return Keyboard{}, err
	}
	if len(kbs) == 0 {
		return Keyboard{}, ErrNoKeyboard
	}
	return kbs[0], nil
}

// EvdevSource reads key events directly from a /dev/input/event* node.
type EvdevSource struct {
	kb  Keyboard
	dev *evdev.InputDevice
}

// OpenEvdev opens the keyboard at path, or the first detected keyboard
// when path is empty.
func OpenEvdev(path string) (*EvdevSource, error) {
	kb := Keyboard{Path: path}
	if path == "" {
		found, err := FindKeyboard()
		if err != nil {
			return nil, err
		}
		kb = found
	}
	dev, err := evdev.Open(kb.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", kb.Path, err)
	}
	if kb.Name == "" {
		if name, err := dev.Name(); err == nil {
			kb.Name = name
		}
	}
	return &EvdevSource{kb: kb, dev: dev}, nil
}

func (s *EvdevSource) Name() string {
	return fmt.Sprintf("evdev %s (%s)", s.kb.Name, s.kb.Path)
}

// Run forwards key transitions until ctx is done. The device is closed on
// return.
func (s *EvdevSource) Run(ctx context.Context, out chan<- KeyEvent) error {
	stop := context.AfterFunc(ctx, func() { s.dev.Close() })
	defer func() {
		if stop() {
			s.dev.Close()
		}
	}()

	for {
		ev, err := s.dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read %s: %w", s.kb.Path, err)
		}
		ke, ok := translateEvdev(ev)
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

func translateEvdev(ev *evdev.InputEvent) (KeyEvent, bool) {
	if ev.Type != evdev.EV_KEY {
		return KeyEvent{}, false
	}
	var edge Edge
	switch ev.Value {
	case 0:
		edge = Released
	case 1:
		edge = Pressed
	default:
		// 2 is auto-repeat
		return KeyEvent{}, false
	}
	code := uint16(ev.Code)
	name, ok := evdevNames[ev.Code]
	if !ok {
		name = unknownKey(code)
	}
	return KeyEvent{
		Code: code,
		Key:  name,
		Edge: edge,
		Time: time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond)),
	}, true
}
