// Package audiodev provides the PortAudio output backend.
package audiodev

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog/log"

	"github.com/airwave-cli/airwave/internal/domain/player"
)

// DefaultFramesPerBuffer is the device write granularity.
const DefaultFramesPerBuffer = 1024

// Initialize acquires the host audio system. This can take several seconds
// on first run (cold hardware initialization), so callers start it
// concurrently with network setup.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize audio device: %w", err)
	}
	return nil
}

// Terminate releases the host audio system.
func Terminate() {
	portaudio.Terminate()
}

// PortAudio renders interleaved 16-bit PCM to the default output device.
// It implements player.Output.
type PortAudio struct {
	frames int
	stream *portaudio.Stream
	buf    []int16
}

// New creates a backend writing framesPerBuffer frames per device call.
func New(framesPerBuffer int) *PortAudio {
	if framesPerBuffer <= 0 {
		framesPerBuffer = DefaultFramesPerBuffer
	}
	return &PortAudio{frames: framesPerBuffer}
}

// Open opens the default output stream for the given format, replacing any
// previously opened stream.
func (p *PortAudio) Open(format player.Format) error {
	if err := p.Close(); err != nil {
		log.Warn().Err(err).Msg("Closing previous audio stream failed")
	}

	p.buf = make([]int16, p.frames*format.Channels)
	stream, err := portaudio.OpenDefaultStream(
		0,
		format.Channels,
		float64(format.SampleRate),
		p.frames,
		p.buf,
	)
	if err != nil {
		return fmt.Errorf("open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start audio stream: %w", err)
	}

	p.stream = stream
	return nil
}

// Write renders samples through the device buffer, blocking until the
// device has accepted them. Short final chunks are zero-padded.
func (p *PortAudio) Write(samples []int16) error {
	if p.stream == nil {
		return errors.New("audio stream not opened")
	}

	for len(samples) > 0 {
		n := copy(p.buf, samples)
		samples = samples[n:]
		for i := n; i < len(p.buf); i++ {
			p.buf[i] = 0
		}
		if err := p.stream.Write(); err != nil {
			return fmt.Errorf("write audio: %w", err)
		}
	}
	return nil
}

// Close stops and releases the current stream, if any.
func (p *PortAudio) Close() error {
	if p.stream == nil {
		return nil
	}

	stream := p.stream
	p.stream = nil

	if err := stream.Stop(); err != nil {
		stream.Close()
		return fmt.Errorf("stop audio stream: %w", err)
	}
	return stream.Close()
}
