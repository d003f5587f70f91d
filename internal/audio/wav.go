package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV returns buf as a 16-bit PCM mono 16 kHz WAV file.
func EncodeWAV(buf *Buffer) ([]byte, error) {
	ws := &memFile{}
	if err := writeWAV(ws, buf); err != nil {
		return nil, err
	}
	return ws.buf, nil
}

// WriteWAVFile writes buf to path as WAV.
func WriteWAVFile(path string, buf *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav failed: %w", err)
	}
	if err := writeWAV(f, buf); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func writeWAV(w io.WriteSeeker, buf *Buffer) error {
	enc := wav.NewEncoder(w, SampleRate, BitDepth, Channels, 1)
	samples := buf.Samples()
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: Channels, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("wav write failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav close failed: %w", err)
	}
	return nil
}

// DecodeWAV reads a WAV file recorded at the capture format. Other sample
// rates, channel counts or bit depths are rejected.
func DecodeWAV(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid WAV file")
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("unsupported WAV encoding %d (need PCM)", dec.WavAudioFormat)
	}
	if dec.SampleRate != SampleRate || dec.NumChans != Channels || dec.BitDepth != BitDepth {
		return nil, fmt.Errorf("unsupported WAV format %d Hz / %d ch / %d bit (need %d Hz mono 16-bit)",
			dec.SampleRate, dec.NumChans, dec.BitDepth, SampleRate)
	}
	ib, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	samples := make([]int16, len(ib.Data))
	for i, v := range ib.Data {
		samples[i] = int16(v)
	}
	return NewBuffer(samples), nil
}

// ReadWAVFile is DecodeWAV for a path.
func ReadWAVFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeWAV(bytes.NewReader(data))
}

// memFile is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes on Close.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("memFile: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("memFile: negative position")
	}
	m.pos = int(abs)
	return abs, nil
}
