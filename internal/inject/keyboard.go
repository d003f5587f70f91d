package inject

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
)

// Keyboard sends the paste chord to the focused window.
type Keyboard interface {
	Paste() error
}

// Chord is a parsed PASTE_KEY.
type Chord struct {
	Ctrl, Shift, Alt bool
	Key              int
}

// ParseChord parses "ctrl+v", "shift+insert" or "ctrl+shift+v".
func ParseChord(s string) (Chord, error) {
	var c Chord
	parts := strings.Split(strings.ToLower(s), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		last := i == len(parts)-1
		switch {
		case !last && (p == "ctrl" || p == "control"):
			c.Ctrl = true
		case !last && p == "shift":
			c.Shift = true
		case !last && p == "alt":
			c.Alt = true
		case last && p == "v":
			c.Key = keybd_event.VK_V
		case last && (p == "insert" || p == "ins"):
			c.Key = keybd_event.VK_INSERT
		default:
			return Chord{}, fmt.Errorf("invalid paste key '%s': unsupported token '%s'", s, p)
		}
	}
	if c.Key == 0 {
		return Chord{}, fmt.Errorf("invalid paste key '%s'", s)
	}
	return c, nil
}

// uinputSettle is how long the kernel and compositor need to pick up a new
// uinput device before it can deliver keys.
const uinputSettle = 2 * time.Second

// VirtualKeyboard sends keys through keybd_event (uinput on Linux).
type VirtualKeyboard struct {
	mu    sync.Mutex
	kb    keybd_event.KeyBonding
	chord Chord
}

// OpenVirtualKeyboard creates the virtual device. On Linux this requires
// write access to /dev/uinput.
func OpenVirtualKeyboard(chord Chord) (*VirtualKeyboard, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, err
	}
	if runtime.GOOS == "linux" {
		time.Sleep(uinputSettle)
	}
	return &VirtualKeyboard{kb: kb, chord: chord}, nil
}

func (k *VirtualKeyboard) Paste() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kb.Clear()
	k.kb.HasCTRL(k.chord.Ctrl)
	k.kb.HasSHIFT(k.chord.Shift)
	k.kb.HasALT(k.chord.Alt)
	k.kb.SetKeys(k.chord.Key)
	return k.kb.Launching()
}
