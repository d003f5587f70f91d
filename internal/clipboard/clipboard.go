// Package clipboard reads and writes the system clipboard.
package clipboard

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// TextMime is the mime type used for text written by this program.
const TextMime = "text/plain;charset=utf-8"

// Content is a clipboard snapshot. An empty Data means the clipboard held
// nothing.
type Content struct {
	Data     []byte
	MimeType string
}

// Text wraps s as plain text content.
func Text(s string) Content {
	return Content{Data: []byte(s), MimeType: TextMime}
}

func (c Content) Empty() bool { return len(c.Data) == 0 }

func (c Content) String() string {
	return fmt.Sprintf("%s (%d bytes)", c.MimeType, len(c.Data))
}

// Clipboard is a system clipboard backend.
type Clipboard interface {
	Name() string
	Read() (Content, error)
	Write(Content) error
}

// New returns the backend named by CLIPBOARD_BACKEND. "auto" picks the
// Wayland tools when a Wayland session is detected.
func New(backend string) (Clipboard, error) {
	switch strings.ToLower(backend) {
	case "wayland":
		return NewWayland()
	case "system":
		return NewSystem()
	case "", "auto":
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			if _, err := exec.LookPath("wl-copy"); err == nil {
				return NewWayland()
			}
		}
		return NewSystem()
	}
	return nil, fmt.Errorf("unknown clipboard backend: %s", backend)
}
