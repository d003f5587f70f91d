package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"voiceinput/internal/audio"
)

// Player plays a cue tone without blocking.
type Player interface {
	Play(freq float64)
}

type message struct {
	title, body string
	isError     bool
}

// Hub turns session events into notifications and tones. Notifications
// are delivered in order by a background goroutine so callers never block
// on the notification service.
type Hub struct {
	n     Notifier
	tones Player
	queue chan message
	wg    sync.WaitGroup
	once  sync.Once
}

// NewHub starts the delivery goroutine. tones may be nil to disable cues.
func NewHub(n Notifier, tones Player) *Hub {
	h := &Hub{n: n, tones: tones, queue: make(chan message, 32)}
	h.wg.Add(1)
	go h.deliver()
	return h
}

// Close flushes pending notifications.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.queue)
		h.wg.Wait()
	})
}

func (h *Hub) deliver() {
	defer h.wg.Done()
	for m := range h.queue {
		var err error
		if m.isError {
			err = h.n.Error(m.title, m.body)
		} else {
			err = h.n.Info(m.title, m.body)
		}
		if err != nil {
			slog.Warn("notification failed", "component", "notify", "error", err)
		}
	}
}

func (h *Hub) post(m message) {
	select {
	case h.queue <- m:
	default:
		slog.Warn("notification dropped", "component", "notify", "message", m.body)
	}
}

func (h *Hub) tone(freq float64) {
	if h.tones != nil {
		h.tones.Play(freq)
	}
}

func (h *Hub) Ready(hotkey string) {
	h.post(message{title: Title, body: fmt.Sprintf("Ready - press %s to record", hotkey)})
}

func (h *Hub) RecordingStarted() {
	h.tone(audio.ToneStart)
	h.post(message{title: Title, body: "Recording..."})
}

func (h *Hub) RecordingStopped() {
	h.tone(audio.ToneStop)
}

func (h *Hub) RecordingCancelled() {
	h.tone(audio.ToneError)
	h.post(message{title: Title, body: "Recording cancelled"})
}

func (h *Hub) Transcribing() {
	h.post(message{title: Title, body: "Transcribing..."})
}

func (h *Hub) Typed(text string) {
	h.post(message{title: Title, body: "Typed: " + truncate(text, 80)})
}

func (h *Hub) NothingRecognised() {
	h.post(message{title: Title, body: "Nothing recognised"})
}

func (h *Hub) Failed(err error) {
	h.tone(audio.ToneError)
	h.post(message{title: ErrorTitle, body: truncate(err.Error(), 200), isError: true})
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
