package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"voiceinput/internal/asr"
	"voiceinput/internal/audio"
	"voiceinput/internal/clipboard"
	"voiceinput/internal/config"
	"voiceinput/internal/inject"
	"voiceinput/internal/input"
	"voiceinput/internal/notify"
)

// RunRecordMode opens the real devices and runs the dictation service
// until ctx is cancelled. Missing credentials and inaccessible input or
// uinput devices are returned immediately.
func RunRecordMode(ctx context.Context, cfg config.Config) error {
	token, err := cfg.Credential()
	if err != nil {
		return err
	}
	transcriber, err := NewTranscriber(cfg, token)
	if err != nil {
		return err
	}

	source, err := NewSource(cfg)
	if err != nil {
		return err
	}

	chord, err := inject.ParseChord(cfg.PasteKey)
	if err != nil {
		return err
	}
	clip, err := clipboard.New(cfg.ClipboardBackend)
	if err != nil {
		return err
	}
	slog.Info("clipboard backend", "component", "app", "backend", clip.Name())
	injector := inject.New(clip, func() (inject.Keyboard, error) {
		return inject.OpenVirtualKeyboard(chord)
	}, inject.Options{
		PasteDelay:   cfg.PasteDelay(),
		RestoreDelay: cfg.RestoreDelay(),
	})
	if err := injector.Acquire(); err != nil {
		return fmt.Errorf("%w (check write access to /dev/uinput)", err)
	}

	dev, err := audio.NewPortAudioDevice(cfg.AudioDevice, cfg.FramesPerBuffer)
	if err != nil {
		return err
	}
	defer dev.Close()

	var notifier notify.Notifier = notify.Log{}
	if cfg.Notification {
		notifier = notify.NewDesktop()
	}
	var tones notify.Player
	if cfg.SoundCues {
		tones = &audio.TonePlayer{}
	}
	hub := notify.NewHub(notifier, tones)
	defer hub.Close()

	svc, err := NewService(cfg, Deps{
		Source:      source,
		Capture:     audio.NewCapture(dev, 0),
		Transcriber: transcriber,
		Injector:    injector,
		Feedback:    hub,
	})
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}

// NewTranscriber returns the client selected by ASR_BACKEND.
func NewTranscriber(cfg config.Config, token string) (asr.Transcriber, error) {
	httpClient := NewHTTPClient(cfg)
	switch strings.ToLower(cfg.ASRBackend) {
	case "openai":
		return asr.NewOpenAI(cfg, token, httpClient), nil
	case "", "http":
		return asr.New(cfg, token, httpClient)
	}
	return nil, fmt.Errorf("unknown ASR_BACKEND: %s", cfg.ASRBackend)
}

// NewSource returns the key event source selected by INPUT_BACKEND.
func NewSource(cfg config.Config) (input.Source, error) {
	switch strings.ToLower(cfg.InputBackend) {
	case "hook":
		return input.NewHookSource(), nil
	case "", "evdev":
		src, err := input.OpenEvdev(cfg.InputDevice)
		if err != nil {
			return nil, fmt.Errorf("open keyboard: %w", err)
		}
		return src, nil
	}
	return nil, fmt.Errorf("unknown INPUT_BACKEND: %s", cfg.InputBackend)
}
