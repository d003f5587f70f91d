package notify

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"voiceinput/internal/audio"
)

type recorded struct {
	title, body string
	isError     bool
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []recorded
}

func (f *fakeNotifier) Info(title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, recorded{title, message, false})
	return nil
}

func (f *fakeNotifier) Error(title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, recorded{title, message, true})
	return errors.New("no notification daemon")
}

type fakePlayer struct {
	mu    sync.Mutex
	freqs []float64
}

func (p *fakePlayer) Play(freq float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freqs = append(p.freqs, freq)
}

func TestHubSessionFlow(t *testing.T) {
	n := &fakeNotifier{}
	p := &fakePlayer{}
	h := NewHub(n, p)

	h.RecordingStarted()
	h.RecordingStopped()
	h.Transcribing()
	h.Typed("hello world")
	h.Failed(errors.New("transcription service error (HTTP 500): boom"))
	h.Close()

	want := []string{"Recording...", "Transcribing...", "Typed: hello world", "transcription service error (HTTP 500): boom"}
	if len(n.msgs) != len(want) {
		t.Fatalf("got %d messages: %+v", len(n.msgs), n.msgs)
	}
	for i, w := range want {
		if n.msgs[i].body != w {
			t.Fatalf("message %d = %q, want %q", i, n.msgs[i].body, w)
		}
	}
	last := n.msgs[len(n.msgs)-1]
	if !last.isError || last.title != ErrorTitle {
		t.Fatalf("failure should be an error notification: %+v", last)
	}

	wantTones := []float64{audio.ToneStart, audio.ToneStop, audio.ToneError}
	if len(p.freqs) != len(wantTones) {
		t.Fatalf("tones = %v", p.freqs)
	}
	for i, f := range wantTones {
		if p.freqs[i] != f {
			t.Fatalf("tone %d = %v, want %v", i, p.freqs[i], f)
		}
	}
}

func TestHubWithoutTones(t *testing.T) {
	n := &fakeNotifier{}
	h := NewHub(n, nil)
	h.RecordingStarted()
	h.NothingRecognised()
	h.Close()
	h.Close()
	if len(n.msgs) != 2 || n.msgs[1].body != "Nothing recognised" {
		t.Fatalf("unexpected messages: %+v", n.msgs)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 80); got != "short" {
		t.Fatalf("got %q", got)
	}
	long := strings.Repeat("ä", 100)
	got := truncate(long, 80)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != 83 {
		t.Fatalf("bad truncation: %q", got)
	}
}
