// Package audio captures microphone input as 16 kHz mono PCM and converts
// it to and from WAV.
package audio

import "time"

const (
	SampleRate = 16000
	Channels   = 1
	BitDepth   = 16
)

// Buffer is a finalized recording. It is not modified after creation.
type Buffer struct {
	samples []int16
}

// NewBuffer wraps samples without copying.
func NewBuffer(samples []int16) *Buffer {
	return &Buffer{samples: samples}
}

// Samples returns the PCM samples. Callers must not modify the slice.
func (b *Buffer) Samples() []int16 {
	if b == nil {
		return nil
	}
	return b.samples
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.samples)
}

// Duration is the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Len()) * time.Second / SampleRate
}
