// Package record implements the Idle/Recording toggle that owns the
// lifecycle of a recording session.
package record

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"voiceinput/internal/audio"
)

// State represents controller state.
type State int

const (
	StateIdle State = iota
	StateRecording
)

func (s State) String() string {
	if s == StateRecording {
		return "recording"
	}
	return "idle"
}

// Capturer is the audio capture the controller drives.
type Capturer interface {
	Start() (*audio.Handle, error)
	Stop(*audio.Handle) (*audio.Buffer, error)
}

// Cues receives user-facing feedback for transitions. Implementations
// must not block.
type Cues interface {
	RecordingStarted()
	RecordingStopped()
	RecordingCancelled()
}

// Session is one recording. Buffer and Ended are set once it is closed.
type Session struct {
	ID      string
	Started time.Time
	Ended   time.Time
	Buffer  *audio.Buffer

	handle *audio.Handle
}

// Duration is the length of captured audio.
func (s *Session) Duration() time.Duration {
	return s.Buffer.Duration()
}

// Controller is the two-state recording machine. At most one session
// exists at a time; transitions are serialized.
type Controller struct {
	mu          sync.Mutex
	state       State
	session     *Session
	capture     Capturer
	cues        Cues
	minDuration time.Duration
	now         func() time.Time
	log         *slog.Logger
}

// New creates a controller in StateIdle.
func New(capture Capturer, cues Cues, minDuration time.Duration) *Controller {
	return &Controller{
		capture:     capture,
		cues:        cues,
		minDuration: minDuration,
		now:         time.Now,
		log:         slog.Default().With("component", "record"),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the open session, or nil when idle.
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Toggle advances the machine on a hotkey trigger. Going Idle->Recording
// returns (nil, nil). Going Recording->Idle returns the closed session
// when it is long enough to transcribe, or nil when it was discarded.
// On error the controller is left Idle.
func (c *Controller) Toggle() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		return nil, c.startLocked()
	default:
		return c.stopLocked()
	}
}

func (c *Controller) startLocked() error {
	h, err := c.capture.Start()
	if err != nil {
		return fmt.Errorf("start recording: %w", err)
	}
	c.session = &Session{
		ID:      strings.ReplaceAll(uuid.New().String(), "-", "")[:16],
		Started: c.now(),
		handle:  h,
	}
	c.state = StateRecording
	c.log.Info("recording started", "session", c.session.ID)
	c.cues.RecordingStarted()
	return nil
}

func (c *Controller) stopLocked() (*Session, error) {
	s := c.session
	c.session = nil
	c.state = StateIdle

	buf, err := c.capture.Stop(s.handle)
	s.handle = nil
	s.Ended = c.now()
	c.cues.RecordingStopped()
	if err != nil {
		return nil, fmt.Errorf("stop recording: %w", err)
	}
	s.Buffer = buf

	if s.Duration() < c.minDuration {
		c.log.Info("recording too short, discarded", "session", s.ID, "duration", s.Duration())
		return nil, nil
	}
	c.log.Info("recording stopped", "session", s.ID, "duration", s.Duration(), "samples", buf.Len())
	return s, nil
}

// Cancel ends the current recording and drops its audio. It reports
// whether a recording was running.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRecording {
		return false
	}
	s := c.discardLocked()
	c.log.Info("recording cancelled", "session", s.ID)
	c.cues.RecordingCancelled()
	return true
}

// Abort handles a fatal capture failure for handle h. It is a no-op when
// h does not belong to the current session, so late errors from an
// already stopped capture are ignored.
func (c *Controller) Abort(h *audio.Handle, cause error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRecording || c.session.handle != h {
		return false
	}
	s := c.discardLocked()
	c.log.Error("recording aborted", "session", s.ID, "error", cause)
	return true
}

func (c *Controller) discardLocked() *Session {
	s := c.session
	c.session = nil
	c.state = StateIdle
	if _, err := c.capture.Stop(s.handle); err != nil {
		c.log.Warn("stop capture", "session", s.ID, "error", err)
	}
	s.handle = nil
	s.Ended = c.now()
	return s
}
