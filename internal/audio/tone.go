package audio

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	toneRate   = 22050
	toneVolume = 0.25
	toneLength = 120 * time.Millisecond
	toneFade   = 5 * time.Millisecond
)

// Cue frequencies.
const (
	ToneStart = 880.0
	ToneStop  = 440.0
	ToneError = 220.0
)

// TonePlayer plays short sine beeps on the default output device.
// Requests made while a beep is playing are dropped.
type TonePlayer struct {
	mu sync.Mutex
}

// Play starts a beep in the background.
func (p *TonePlayer) Play(freq float64) {
	if !p.mu.TryLock() {
		return
	}
	go func() {
		defer p.mu.Unlock()
		if err := playSamples(Sine(freq, toneLength, toneRate, toneVolume)); err != nil {
			slog.Warn("could not play tone", "component", "audio", "freq", freq, "error", err)
		}
	}()
}

// Sine returns a mono sine wave with short linear fades at both ends.
func Sine(freq float64, d time.Duration, rate int, volume float64) []float32 {
	n := int(d.Seconds() * float64(rate))
	fade := int(toneFade.Seconds() * float64(rate))
	out := make([]float32, n)
	for i := range out {
		g := volume
		if i < fade {
			g *= float64(i) / float64(fade)
		} else if n-1-i < fade {
			g *= float64(n-1-i) / float64(fade)
		}
		out[i] = float32(g * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func playSamples(samples []float32) error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()

	const frames = 512
	buffer := make([]float32, frames)
	stream, err := portaudio.OpenDefaultStream(0, Channels, toneRate, frames, &buffer)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	for pos := 0; pos < len(samples); pos += frames {
		for i := range buffer {
			if pos+i < len(samples) {
				buffer[i] = samples[pos+i]
			} else {
				buffer[i] = 0
			}
		}
		if err := stream.Write(); err != nil {
			return err
		}
	}
	return nil
}
