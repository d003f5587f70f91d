package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const toolTimeout = 2 * time.Second

// runner executes the wl-clipboard tools.
type runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Input(ctx context.Context, stdin []byte, name string, args ...string) error
}

// Wayland drives wl-paste and wl-copy directly so snapshots keep their
// mime type (images, rich text) instead of being flattened to text.
type Wayland struct {
	run runner
}

func NewWayland() (*Wayland, error) {
	for _, tool := range []string{"wl-copy", "wl-paste"} {
		if _, err := exec.LookPath(tool); err != nil {
			return nil, fmt.Errorf("%s not found (install wl-clipboard): %w", tool, err)
		}
	}
	return &Wayland{run: execRunner{}}, nil
}

func (w *Wayland) Name() string { return "wayland" }

func (w *Wayland) Read() (Content, error) {
	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()

	out, err := w.run.Output(ctx, "wl-paste", "--list-types")
	if err != nil {
		if isNoSelection(err) {
			return Content{}, nil
		}
		return Content{}, fmt.Errorf("wl-paste --list-types: %w", err)
	}
	mime := pickMime(strings.Split(strings.TrimSpace(string(out)), "\n"))
	if mime == "" {
		return Content{}, nil
	}

	data, err := w.run.Output(ctx, "wl-paste", "--no-newline", "--type", mime)
	if err != nil {
		if isNoSelection(err) {
			return Content{}, nil
		}
		return Content{}, fmt.Errorf("wl-paste --type %s: %w", mime, err)
	}
	return Content{Data: data, MimeType: mime}, nil
}

func (w *Wayland) Write(c Content) error {
	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()

	if c.Empty() {
		if err := w.run.Input(ctx, nil, "wl-copy", "--clear"); err != nil {
			return fmt.Errorf("wl-copy --clear: %w", err)
		}
		return nil
	}
	mime := c.MimeType
	if mime == "" {
		mime = TextMime
	}
	if err := w.run.Input(ctx, c.Data, "wl-copy", "--type", mime); err != nil {
		return fmt.Errorf("wl-copy --type %s: %w", mime, err)
	}
	return nil
}

// pickMime prefers UTF-8 text, then any text, then the first offered type.
func pickMime(types []string) string {
	var text, first string
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if first == "" {
			first = t
		}
		if t == TextMime || t == "text/plain;charset=UTF-8" {
			return t
		}
		if text == "" && strings.HasPrefix(t, "text/plain") {
			text = t
		}
	}
	if text != "" {
		return text
	}
	return first
}

// noSelectionError is wl-paste's exit for an empty clipboard.
type noSelectionError struct{ stderr string }

func (e *noSelectionError) Error() string { return e.stderr }

func isNoSelection(err error) bool {
	var ns *noSelectionError
	return errors.As(err, &ns)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "No selection") || strings.Contains(msg, "Nothing is copied") {
			return nil, &noSelectionError{stderr: msg}
		}
		if msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Input leaves stdout and stderr unattached: wl-copy forks a server that
// keeps inherited pipes open until the selection changes.
func (execRunner) Input(ctx context.Context, stdin []byte, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	return cmd.Run()
}
