// Package inject types text into the focused application by staging it on
// the clipboard and sending a paste chord.
package inject

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"voiceinput/internal/clipboard"
)

// Opener creates the virtual keyboard.
type Opener func() (Keyboard, error)

// Options holds the paste timing.
type Options struct {
	// PasteDelay lets the clipboard owner settle before the chord.
	PasteDelay time.Duration
	// RestoreDelay lets the target read the clipboard before restore.
	RestoreDelay time.Duration
}

// Injector pastes text while preserving the user's clipboard. Calls are
// serialized.
type Injector struct {
	mu   sync.Mutex
	clip clipboard.Clipboard
	open Opener
	kb   Keyboard
	opts Options
	log  *slog.Logger
}

func New(clip clipboard.Clipboard, open Opener, opts Options) *Injector {
	return &Injector{
		clip: clip,
		open: open,
		opts: opts,
		log:  slog.Default().With("component", "inject"),
	}
}

// Acquire opens the virtual keyboard if it is not open yet.
func (i *Injector) Acquire() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, err := i.acquireLocked()
	return err
}

func (i *Injector) acquireLocked() (Keyboard, error) {
	if i.kb != nil {
		return i.kb, nil
	}
	kb, err := i.open()
	if err != nil {
		return nil, &DeviceUnavailableError{Err: err}
	}
	i.kb = kb
	return kb, nil
}

// Inject pastes text into the focused window. The clipboard is left
// untouched when the keyboard cannot be opened, and is restored to its
// previous contents on every other return path, panics included.
func (i *Injector) Inject(ctx context.Context, text string) (err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	kb, err := i.acquireLocked()
	if err != nil {
		return err
	}

	snapshot, err := i.clip.Read()
	if err != nil {
		return &ClipboardError{Op: "read", Err: err}
	}
	i.log.Debug("clipboard saved", "content", snapshot.String())

	defer func() {
		if rerr := i.clip.Write(snapshot); rerr != nil {
			i.log.Error("clipboard restore failed", "error", rerr)
			if err == nil {
				err = &ClipboardError{Op: "restore", Err: rerr}
			}
			return
		}
		i.log.Debug("clipboard restored")
	}()

	if err := i.clip.Write(clipboard.Text(text)); err != nil {
		return &ClipboardError{Op: "write", Err: err}
	}
	if err := sleep(ctx, i.opts.PasteDelay); err != nil {
		return err
	}
	if err := kb.Paste(); err != nil {
		return &DeviceUnavailableError{Err: err}
	}
	return sleep(ctx, i.opts.RestoreDelay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
