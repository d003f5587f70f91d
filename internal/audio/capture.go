package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Stream is an open input stream. Read blocks until the next block of
// samples is available.
type Stream interface {
	Read() ([]int16, error)
	Close() error
}

// Device opens input streams at SampleRate, mono.
type Device interface {
	Open() (Stream, error)
}

// CaptureStateError reports Start or Stop called out of sequence.
type CaptureStateError struct {
	Op     string
	Reason string
}

func (e *CaptureStateError) Error() string {
	return fmt.Sprintf("capture %s: %s", e.Op, e.Reason)
}

// DeviceError is a fatal stream failure while a handle was active.
type DeviceError struct {
	Handle *Handle
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device failed: %v", e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Handle identifies one running capture. It is invalid after Stop.
type Handle struct {
	Started time.Time

	stream   Stream
	blocks   chan []int16
	stop     chan struct{}
	readDone chan struct{}
	written  chan struct{}
	samples  []int16
}

// Capture accumulates blocks from a Device into a Buffer between Start
// and Stop. A reader goroutine pulls blocks from the stream and a single
// writer goroutine appends them.
type Capture struct {
	dev    Device
	queue  int
	errs   chan error
	mu     sync.Mutex
	active *Handle
}

// NewCapture returns a capture on dev. queue bounds the number of blocks
// in flight between reader and writer.
func NewCapture(dev Device, queue int) *Capture {
	if queue <= 0 {
		queue = 64
	}
	return &Capture{dev: dev, queue: queue, errs: make(chan error, 1)}
}

// Errors delivers *DeviceError values for streams that failed after Start.
func (c *Capture) Errors() <-chan error {
	return c.errs
}

// Start opens the device and begins appending blocks.
func (c *Capture) Start() (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return nil, &CaptureStateError{Op: "start", Reason: "capture already running"}
	}
	stream, err := c.dev.Open()
	if err != nil {
		return nil, fmt.Errorf("open audio stream: %w", err)
	}
	h := &Handle{
		Started:  time.Now(),
		stream:   stream,
		blocks:   make(chan []int16, c.queue),
		stop:     make(chan struct{}),
		readDone: make(chan struct{}),
		written:  make(chan struct{}),
	}
	c.active = h

	go c.write(h)
	go c.read(h)
	return h, nil
}

// Stop halts delivery and returns everything captured for h. It waits for
// the last in-flight block to be appended. Device failures are reported
// on Errors, not here; after one the buffer holds the blocks read before
// the failure.
func (c *Capture) Stop(h *Handle) (*Buffer, error) {
	c.mu.Lock()
	if h == nil || c.active != h {
		c.mu.Unlock()
		return nil, &CaptureStateError{Op: "stop", Reason: "handle is not active"}
	}
	c.active = nil
	c.mu.Unlock()

	close(h.stop)
	<-h.readDone
	close(h.blocks)
	<-h.written

	if err := h.stream.Close(); err != nil {
		slog.Warn("close audio stream", "component", "audio", "error", err)
	}
	return NewBuffer(h.samples), nil
}

func (c *Capture) read(h *Handle) {
	defer close(h.readDone)
	for {
		select {
		case <-h.stop:
			return
		default:
		}
		block, err := h.stream.Read()
		if err != nil {
			select {
			case c.errs <- &DeviceError{Handle: h, Err: err}:
			default:
				slog.Error("audio device failed", "component", "audio", "error", err)
			}
			return
		}
		if len(block) == 0 {
			continue
		}
		cp := make([]int16, len(block))
		copy(cp, block)
		h.blocks <- cp
	}
}

func (c *Capture) write(h *Handle) {
	defer close(h.written)
	for block := range h.blocks {
		h.samples = append(h.samples, block...)
	}
}
