//go:build !linux

package input

import (
	"context"
	"errors"
)

// ErrNoKeyboard is returned when no readable keyboard device exists.
var ErrNoKeyboard = errors.New("evdev input is only available on linux")

func ListKeyboards() ([]Keyboard, error) {
	return nil, ErrNoKeyboard
}

func FindKeyboard() (Keyboard, error) {
	return Keyboard{}, ErrNoKeyboard
}

type EvdevSource struct{}

func OpenEvdev(path string) (*EvdevSource, error) {
	return nil, ErrNoKeyboard
}

func (s *EvdevSource) Name() string { return "evdev (unsupported)" }

func (s *EvdevSource) Run(ctx context.Context, out chan<- KeyEvent) error {
	return ErrNoKeyboard
}
