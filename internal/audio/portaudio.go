package audio

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDevice opens blocking PortAudio input streams. Initialize is
// called on creation; call Close to release the library.
type PortAudioDevice struct {
	name            string
	framesPerBuffer int
}

func NewPortAudioDevice(name string, framesPerBuffer int) (*PortAudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", err)
	}
	if framesPerBuffer <= 0 {
		framesPerBuffer = 1024
	}
	return &PortAudioDevice{name: name, framesPerBuffer: framesPerBuffer}, nil
}

func (d *PortAudioDevice) Close() error {
	return portaudio.Terminate()
}

func (d *PortAudioDevice) Open() (Stream, error) {
	in := make([]int16, d.framesPerBuffer)

	var (
		stream *portaudio.Stream
		err    error
	)
	dev, findErr := d.findDevice()
	switch {
	case dev != nil:
		params := portaudio.StreamParameters{
			Input: portaudio.StreamDeviceParameters{
				Device:   dev,
				Channels: Channels,
				Latency:  dev.DefaultLowInputLatency,
			},
			SampleRate:      SampleRate,
			FramesPerBuffer: len(in),
		}
		stream, err = portaudio.OpenStream(params, in)
	default:
		if findErr != nil {
			slog.Warn("audio device not found, using default", "component", "audio", "device", d.name, "error", findErr)
		}
		stream, err = portaudio.OpenDefaultStream(Channels, 0, SampleRate, len(in), in)
	}
	if err != nil {
		return nil, fmt.Errorf("open stream failed: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start stream failed: %w", err)
	}
	return &paStream{stream: stream, in: in}, nil
}

func (d *PortAudioDevice) findDevice() (*portaudio.DeviceInfo, error) {
	if d.name == "" || d.name == "default" {
		return nil, nil
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.Name == d.name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", d.name)
}

type paStream struct {
	stream *portaudio.Stream
	in     []int16
}

func (s *paStream) Read() ([]int16, error) {
	if err := s.stream.Read(); err != nil {
		// overflow drops samples inside PortAudio but the block is still valid
		if errors.Is(err, portaudio.InputOverflowed) {
			slog.Debug("input overflowed", "component", "audio")
			return s.in, nil
		}
		return nil, err
	}
	return s.in, nil
}

func (s *paStream) Close() error {
	stopErr := s.stream.Stop()
	closeErr := s.stream.Close()
	return errors.Join(stopErr, closeErr)
}

// InputDevice describes a PortAudio device that can record.
type InputDevice struct {
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefault         bool
}

// ListInputDevices returns all devices with at least one input channel.
func ListInputDevices() ([]InputDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}
	var defaultName string
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultName = def.Name
	}

	var out []InputDevice
	for _, dev := range devices {
		if dev.MaxInputChannels <= 0 {
			continue
		}
		out = append(out, InputDevice{
			Name:              dev.Name,
			MaxInputChannels:  dev.MaxInputChannels,
			DefaultSampleRate: dev.DefaultSampleRate,
			IsDefault:         dev.Name == defaultName,
		})
	}
	return out, nil
}
