package clipboard

import (
	"errors"
	"log/slog"

	"github.com/atotto/clipboard"
)

// System is the text-only clipboard provided by atotto/clipboard
// (xclip/xsel/wl-clipboard on Linux, native APIs elsewhere).
type System struct {
	read  func() (string, error)
	write func(string) error
}

func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")
	}
	return &System{read: clipboard.ReadAll, write: clipboard.WriteAll}, nil
}

func (s *System) Name() string { return "system" }

// Read returns the clipboard text. The helper tools exit non-zero on an
// empty selection, so a read failure is reported as empty content.
func (s *System) Read() (Content, error) {
	text, err := s.read()
	if err != nil {
		slog.Debug("clipboard read failed, treating as empty", "component", "clipboard", "error", err)
		return Content{MimeType: TextMime}, nil
	}
	return Text(text), nil
}

// Write replaces the clipboard text. Non-text content is written as its
// byte string.
func (s *System) Write(c Content) error {
	return s.write(string(c.Data))
}
