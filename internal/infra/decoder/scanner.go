package decoder

import (
	"errors"
	"fmt"
	"io"
)

// readChunk is how many bytes are pulled from the source per refill. Larger
// than the biggest possible frame (1441 bytes) so one refill can complete a
// pending frame.
const readChunk = 4096

// ErrFormatChange reports a mid-stream change of sample rate or channel
// count relative to the first decoded frame. The stream is not decodable
// past this point.
var ErrFormatChange = errors.New("audio format changed mid-stream")

// FrameScanner reads a raw byte stream and emits only whole, validated MP3
// frames. Frame boundaries are independent of the read sizes of the
// underlying source, and garbage between frames (a mid-frame join at
// stream start, transient corruption) is skipped byte by byte until the
// next frame sync.
//
// FrameScanner is an io.Reader so it can feed a sample decoder directly.
// It is not safe for concurrent use.
type FrameScanner struct {
	src io.Reader

	buf   []byte // staging buffer of raw, not yet validated bytes
	frame []byte // current validated frame, pending emission

	sampleRate int
	channels   int
	haveFormat bool

	srcEOF  bool
	err     error // sticky fatal error
	skipped int64
}

// NewFrameScanner wraps a live byte source.
func NewFrameScanner(src io.Reader) *FrameScanner {
	return &FrameScanner{src: src}
}

// Read emits validated frame bytes, pulling and resyncing on the source as
// needed. It blocks with the source and returns io.EOF when the source is
// exhausted and no complete frame remains.
func (s *FrameScanner) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	for len(s.frame) == 0 {
		if err := s.nextFrame(); err != nil {
			return 0, err
		}
	}

	n := copy(p, s.frame)
	s.frame = s.frame[n:]
	return n, nil
}

// Format returns the sample rate and channel count declared by the first
// validated frame. ok is false until that frame has been scanned.
func (s *FrameScanner) Format() (sampleRate, channels int, ok bool) {
	return s.sampleRate, s.channels, s.haveFormat
}

// SkippedBytes reports how many garbage bytes were discarded so far.
func (s *FrameScanner) SkippedBytes() int64 {
	return s.skipped
}

// nextFrame advances s.buf past garbage until it holds one complete frame,
// then moves that frame to s.frame.
func (s *FrameScanner) nextFrame() error {
	for {
		h, ok := s.findHeader()
		if !ok {
			if s.srcEOF {
				return io.EOF
			}
			if err := s.fill(); err != nil {
				return err
			}
			continue
		}

		// Buffer the whole frame plus a lookahead header before accepting.
		if len(s.buf) < h.length+headerSize && !s.srcEOF {
			if err := s.fill(); err != nil {
				return err
			}
			continue
		}
		if len(s.buf) < h.length {
			// Source ended mid-frame; the trailing partial frame is dropped.
			return io.EOF
		}

		// A sync pattern inside garbage can masquerade as a header. A real
		// frame is immediately followed by the next frame's header, so
		// reject candidates whose successor position does not parse.
		if len(s.buf) >= h.length+headerSize {
			if _, nextOK := parseFrameHeader(s.buf[h.length:]); !nextOK {
				s.skip(1)
				continue
			}
		}

		if s.haveFormat {
			if h.sampleRate != s.sampleRate || h.channels != s.channels {
				s.err = fmt.Errorf("%w: %dHz/%dch then %dHz/%dch",
					ErrFormatChange, s.sampleRate, s.channels, h.sampleRate, h.channels)
				return s.err
			}
		} else {
			s.sampleRate = h.sampleRate
			s.channels = h.channels
			s.haveFormat = true
		}

		s.frame = append(s.frame[:0], s.buf[:h.length]...)
		s.buf = s.buf[h.length:]
		return nil
	}
}

// findHeader discards garbage from the front of the staging buffer until a
// frame header starts at offset zero. Returns false when the buffer has no
// header and needs more bytes; up to three trailing bytes are kept since
// they may be a partial header.
func (s *FrameScanner) findHeader() (frameHeader, bool) {
	i := 0
	for i+headerSize <= len(s.buf) {
		if h, ok := parseFrameHeader(s.buf[i:]); ok {
			s.skip(i)
			return h, true
		}
		i++
	}
	s.skip(i)
	return frameHeader{}, false
}

func (s *FrameScanner) skip(n int) {
	if n > 0 {
		s.skipped += int64(n)
		s.buf = s.buf[n:]
	}
}

// fill appends up to readChunk bytes from the source to the staging buffer.
// A read returning zero bytes with io.EOF marks the end of the stream.
func (s *FrameScanner) fill() error {
	if cap(s.buf) < len(s.buf)+readChunk {
		grown := make([]byte, len(s.buf), len(s.buf)+readChunk)
		copy(grown, s.buf)
		s.buf = grown
	}

	start := len(s.buf)
	s.buf = s.buf[:start+readChunk]
	n, err := s.src.Read(s.buf[start:])
	s.buf = s.buf[:start+n]

	if err != nil {
		if errors.Is(err, io.EOF) {
			s.srcEOF = true
			return nil
		}
		return fmt.Errorf("stream read: %w", err)
	}
	return nil
}
