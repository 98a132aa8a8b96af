// Package player provides the playback session that owns the audio output.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// Volume levels selectable by the user.
const (
	MinVolume = 0
	MaxVolume = 9
)

// blockFrames is how many sample frames are pulled from the decoder per
// device write.
const blockFrames = 1024

// ErrVolumeRange is returned for volume levels outside [0,9].
var ErrVolumeRange = errors.New("volume level out of range")

// Format describes a PCM sample stream.
type Format struct {
	SampleRate int
	Channels   int
}

// Output is the audio output device the session renders to.
type Output interface {
	// Open prepares the device for a stream of the given format, replacing
	// any previously opened stream.
	Open(format Format) error

	// Write renders interleaved 16-bit samples, blocking on device buffer
	// availability.
	Write(samples []int16) error

	// Close releases the current device stream.
	Close() error
}

// SampleSource is a lazy, pull-based sequence of decoded samples. Read
// blocks with the network; io.EOF means the remote closed the stream.
type SampleSource interface {
	Read(samples []int16) (int, error)
	Format() Format
	Close() error
}

// OpenFunc opens the sample source for a station URL.
type OpenFunc func(ctx context.Context, url string) (SampleSource, error)

// Session plays one station at a time on an audio output device. It is the
// process-wide playback singleton, shared by the startup orchestration and
// the keyboard collaborator; all methods are safe for concurrent use.
type Session struct {
	out  Output
	open OpenFunc

	mu     sync.Mutex
	level  int
	gain   float32
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates a session over an opened output backend. Volume starts
// at the maximum level.
func NewSession(out Output, open OpenFunc) *Session {
	return &Session{
		out:   out,
		open:  open,
		level: MaxVolume,
		gain:  Gain(MaxVolume),
	}
}

// SetVolume updates the gain immediately, affecting samples already in
// flight. Setting the current level is a no-op.
func (s *Session) SetVolume(level int) error {
	if level < MinVolume || level > MaxVolume {
		return fmt.Errorf("%w: %d", ErrVolumeRange, level)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if level == s.level {
		return nil
	}
	s.level = level
	s.gain = Gain(level)
	log.Debug().Int("level", level).Msg("Volume changed")
	return nil
}

// Volume returns the last-set volume level.
func (s *Session) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Play switches to the given station URL. Any currently playing station is
// stopped first and its decoder, connection and output binding released;
// in-flight audio from the old station is discarded, never mixed in. Safe
// to call repeatedly.
func (s *Session) Play(ctx context.Context, url string) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	prevCancel, prevDone := s.cancel, s.done
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	go s.run(runCtx, url, done)
}

// Stop ends playback of the current station, if any.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// run is the dedicated playback loop for one station. Its blocking network
// reads and device writes are isolated here so they never stall metadata
// delivery or input handling.
func (s *Session) run(ctx context.Context, url string, done chan struct{}) {
	defer close(done)

	src, err := s.open(ctx, url)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Str("url", url).Msg("Failed to open stream")
		}
		return
	}
	defer src.Close()

	format := src.Format()
	if err := s.out.Open(format); err != nil {
		log.Error().Err(err).Msg("Failed to open audio output")
		return
	}
	defer s.out.Close()

	log.Info().
		Str("url", url).
		Int("sample_rate", format.SampleRate).
		Int("channels", format.Channels).
		Msg("Playback started")

	samples := make([]int16, blockFrames*format.Channels)
	for ctx.Err() == nil {
		n, err := src.Read(samples)
		if n > 0 {
			s.applyGain(samples[:n])
			if werr := s.out.Write(samples[:n]); werr != nil {
				if ctx.Err() == nil {
					log.Warn().Err(werr).Msg("Audio output write failed")
				}
				return
			}
		}
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				log.Info().Str("url", url).Msg("Stream ended")
			case ctx.Err() != nil:
				// Station switch or shutdown; nothing to report.
			default:
				log.Warn().Err(err).Msg("Playback stopped")
			}
			return
		}
	}
}

func (s *Session) applyGain(samples []int16) {
	s.mu.Lock()
	g := s.gain
	s.mu.Unlock()

	if g == 1 {
		return
	}
	for i, v := range samples {
		samples[i] = int16(float32(v) * g)
	}
}

// Gain maps a volume level to the multiplicative sample gain. The curve is
// quadratic: level 0 is silence, level 9 is unity, and equal levels always
// produce equal gains.
func Gain(level int) float32 {
	if level <= MinVolume {
		return 0
	}
	if level >= MaxVolume {
		return 1
	}
	x := float32(level) / MaxVolume
	return x * x
}
