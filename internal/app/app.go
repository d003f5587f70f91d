// Package app wires hotkeys, recording, transcription and text injection
// into the running dictation service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"voiceinput/internal/asr"
	"voiceinput/internal/audio"
	"voiceinput/internal/config"
	"voiceinput/internal/hotkey"
	"voiceinput/internal/inject"
	"voiceinput/internal/input"
	"voiceinput/internal/record"
)

// Feedback is everything the user sees or hears about a session.
type Feedback interface {
	record.Cues
	Ready(hotkey string)
	Transcribing()
	Typed(text string)
	NothingRecognised()
	Failed(err error)
}

// Injector types text into the focused application.
type Injector interface {
	Inject(ctx context.Context, text string) error
}

// Capture is the audio capture driven by the controller, plus its
// asynchronous failure channel.
type Capture interface {
	record.Capturer
	Errors() <-chan error
}

// Deps are the external collaborators of a Service.
type Deps struct {
	Source      input.Source
	Capture     Capture
	Transcriber asr.Transcriber
	Injector    Injector
	Feedback    Feedback
}

// Service runs the hotkey loop and the transcription pipeline.
type Service struct {
	cfg        config.Config
	deps       Deps
	combo      hotkey.Combo
	detector   *hotkey.Detector
	controller *record.Controller
	sessions   chan *record.Session
	log        *slog.Logger
}

// NewService validates the hotkeys in cfg and builds the state machine.
func NewService(cfg config.Config, deps Deps) (*Service, error) {
	combo, err := hotkey.ParseCombo(cfg.Hotkey)
	if err != nil {
		return nil, fmt.Errorf("HOTKEY: %w", err)
	}
	detector := hotkey.NewDetector(combo, cfg.Debounce())
	if cfg.CancelKey != "" {
		cancel, err := hotkey.ParseCombo(cfg.CancelKey)
		if err != nil {
			return nil, fmt.Errorf("CANCEL_KEY: %w", err)
		}
		detector.Bind(hotkey.ActionCancel, cancel)
	}
	return &Service{
		cfg:        cfg,
		deps:       deps,
		combo:      combo,
		detector:   detector,
		controller: record.New(deps.Capture, deps.Feedback, cfg.MinDuration()),
		sessions:   make(chan *record.Session, 8),
		log:        slog.Default().With("component", "app"),
	}, nil
}

// Run blocks until ctx is cancelled or the input source fails. The event
// loop below is the only goroutine that touches the detector and the
// controller's transitions; transcription happens on a separate worker.
func (s *Service) Run(ctx context.Context) error {
	events := make(chan input.KeyEvent, 64)
	srcErr := make(chan error, 1)
	go func() {
		srcErr <- s.deps.Source.Run(ctx, events)
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pipeline(ctx)
	}()

	s.log.Info("ready", "hotkey", s.combo.String(), "input", s.deps.Source.Name())
	s.deps.Feedback.Ready(s.combo.String())

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-srcErr:
			if err != nil && ctx.Err() == nil {
				runErr = fmt.Errorf("input source: %w", err)
			}
			break loop
		case ev := <-events:
			s.handleKey(ev)
		case err := <-s.deps.Capture.Errors():
			s.handleCaptureError(err)
		}
	}

	if sess := s.controller.Current(); sess != nil {
		s.log.Info("discarding recording in progress", "session", sess.ID)
		s.controller.Cancel()
	}
	close(s.sessions)
	wg.Wait()
	s.log.Info("stopped")
	return runErr
}

func (s *Service) handleKey(ev input.KeyEvent) {
	tr, ok := s.detector.Observe(ev)
	if !ok {
		return
	}
	s.log.Debug("hotkey", "action", tr.Action, "held", s.detector.Held())

	switch tr.Action {
	case hotkey.ActionToggle:
		sess, err := s.controller.Toggle()
		if err != nil {
			s.report(err)
			return
		}
		if sess == nil {
			return
		}
		select {
		case s.sessions <- sess:
		default:
			s.report(fmt.Errorf("transcription queue full, recording %s dropped", sess.ID))
		}
	case hotkey.ActionCancel:
		if !s.controller.Cancel() {
			s.log.Debug("not recording; nothing to cancel")
		}
	}
}

func (s *Service) handleCaptureError(err error) {
	var de *audio.DeviceError
	if !errors.As(err, &de) {
		s.report(err)
		return
	}
	if s.controller.Abort(de.Handle, de.Err) {
		s.report(err)
		return
	}
	s.log.Debug("ignoring capture error for finished recording", "error", err)
}

// report logs err with its category and notifies the user. It never
// stops the service.
func (s *Service) report(err error) {
	s.log.Error("session failed", "kind", errorKind(err), "error", err)
	s.deps.Feedback.Failed(err)
}

func errorKind(err error) string {
	var (
		capErr  *audio.CaptureStateError
		devErr  *audio.DeviceError
		authErr *asr.AuthError
		netErr  *asr.NetworkError
		svcErr  *asr.ServiceError
		kbErr   *inject.DeviceUnavailableError
		clipErr *inject.ClipboardError
	)
	switch {
	case errors.As(err, &capErr):
		return "capture_state"
	case errors.As(err, &devErr):
		return "capture_device"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &svcErr):
		return "service"
	case errors.As(err, &kbErr):
		return "keyboard"
	case errors.As(err, &clipErr):
		return "clipboard"
	}
	return "other"
}
