package audio

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeStream struct {
	block  int
	delay  time.Duration
	failAt int64

	reads  atomic.Int64
	closed atomic.Bool
}

func (s *fakeStream) Read() ([]int16, error) {
	time.Sleep(s.delay)
	n := s.reads.Add(1)
	if s.failAt > 0 && n >= s.failAt {
		s.reads.Add(-1)
		return nil, errors.New("device unplugged")
	}
	out := make([]int16, s.block)
	for i := range out {
		out[i] = int16(n)
	}
	return out, nil
}

func (s *fakeStream) Close() error {
	s.closed.Store(true)
	return nil
}

type fakeDevice struct {
	mu      sync.Mutex
	streams []*fakeStream
	next    func() *fakeStream
	openErr error
}

func (d *fakeDevice) Open() (Stream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	s := d.next()
	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()
	return s, nil
}

func TestCaptureKeepsEveryBlock(t *testing.T) {
	var stream *fakeStream
	dev := &fakeDevice{next: func() *fakeStream {
		stream = &fakeStream{block: 160, delay: time.Millisecond}
		return stream
	}}
	c := NewCapture(dev, 4)

	h, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	buf, err := c.Stop(h)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}

	reads := int(stream.reads.Load())
	if reads == 0 {
		t.Fatalf("no blocks read")
	}
	if buf.Len() != reads*160 {
		t.Fatalf("buffer has %d samples, want %d (%d blocks)", buf.Len(), reads*160, reads)
	}
	// blocks stay in arrival order
	s := buf.Samples()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			t.Fatalf("samples out of order at %d", i)
		}
	}
	if !stream.closed.Load() {
		t.Fatalf("stream not closed")
	}
	if running(c) {
		t.Fatalf("capture still active after Stop")
	}
}

func TestCaptureStateErrors(t *testing.T) {
	dev := &fakeDevice{next: func() *fakeStream { return &fakeStream{block: 16, delay: time.Millisecond} }}
	c := NewCapture(dev, 0)

	var se *CaptureStateError
	if _, err := c.Stop(nil); !errors.As(err, &se) {
		t.Fatalf("Stop(nil) = %v, want CaptureStateError", err)
	}

	h, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := c.Start(); !errors.As(err, &se) || se.Op != "start" {
		t.Fatalf("second Start = %v, want CaptureStateError", err)
	}
	if _, err := c.Stop(h); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := c.Stop(h); !errors.As(err, &se) || se.Op != "stop" {
		t.Fatalf("stale Stop = %v, want CaptureStateError", err)
	}

	// a fresh start after stop is fine
	h2, err := c.Start()
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if _, err := c.Stop(h); !errors.As(err, &se) {
		t.Fatalf("Stop with old handle should fail, got %v", err)
	}
	if _, err := c.Stop(h2); err != nil {
		t.Fatalf("Stop h2: %v", err)
	}
}

func TestCaptureOpenError(t *testing.T) {
	c := NewCapture(&fakeDevice{openErr: errors.New("no mic")}, 0)
	if _, err := c.Start(); err == nil {
		t.Fatalf("expected open error")
	}
	if running(c) {
		t.Fatalf("failed start left capture active")
	}
}

func TestCaptureDeviceFailure(t *testing.T) {
	dev := &fakeDevice{next: func() *fakeStream { return &fakeStream{block: 16, failAt: 3} }}
	c := NewCapture(dev, 0)
	h, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case err := <-c.Errors():
		var de *DeviceError
		if !errors.As(err, &de) || de.Handle != h {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("device failure not reported")
	}

	buf, err := c.Stop(h)
	if err != nil {
		t.Fatalf("Stop after failure: %v", err)
	}
	if buf.Len() != 2*16 {
		t.Fatalf("expected the two good blocks, got %d samples", buf.Len())
	}
}

func TestBufferDuration(t *testing.T) {
	if d := NewBuffer(make([]int16, SampleRate/2)).Duration(); d != 500*time.Millisecond {
		t.Fatalf("Duration = %v", d)
	}
	var nilBuf *Buffer
	if nilBuf.Duration() != 0 || nilBuf.Len() != 0 {
		t.Fatalf("nil buffer should be empty")
	}
}

func TestWAVRoundTrip(t *testing.T) {
	in := NewBuffer([]int16{0, 1, -1, 32767, -32768, 1234})
	data, err := EncodeWAV(in)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Contains(data[:16], []byte("WAVE")) {
		t.Fatalf("missing RIFF/WAVE header")
	}
	if len(data) != 44+2*in.Len() {
		t.Fatalf("unexpected size %d", len(data))
	}

	out, err := DecodeWAV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if out.Len() != in.Len() {
		t.Fatalf("len %d, want %d", out.Len(), in.Len())
	}
	for i, v := range in.Samples() {
		if out.Samples()[i] != v {
			t.Fatalf("sample %d = %d, want %d", i, out.Samples()[i], v)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeWAV(bytes.NewReader([]byte("definitely not audio"))); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMemFileSeekPatch(t *testing.T) {
	m := &memFile{}
	m.Write([]byte("hello world"))
	if _, err := m.Seek(0, 0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	m.Write([]byte("J"))
	if string(m.buf) != "Jello world" {
		t.Fatalf("got %q", m.buf)
	}
	if _, err := m.Seek(-1, 0); err == nil {
		t.Fatalf("expected error for negative seek")
	}
}

func TestSine(t *testing.T) {
	s := Sine(440, 100*time.Millisecond, 16000, 0.25)
	if len(s) != 1600 {
		t.Fatalf("len = %d", len(s))
	}
	if s[0] != 0 || s[len(s)-1] != 0 {
		t.Fatalf("fade should start and end at zero: %v %v", s[0], s[len(s)-1])
	}
	for _, v := range s {
		if v > 0.25 || v < -0.25 {
			t.Fatalf("sample %v exceeds volume", v)
		}
	}
}

func running(c *Capture) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}
