package decoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// Format describes the PCM produced by a Decoder.
type Format struct {
	SampleRate int
	Channels   int
}

// Decoder exposes a live MP3 byte stream as a pull-based sequence of
// interleaved 16-bit PCM samples. The sequence is lazy, blocks with the
// source, and is not restartable; io.EOF means the remote closed the
// connection.
//
// go-mp3 always emits two interleaved channels; mono frames are upmixed,
// so Format reports the output shape, not the wire shape.
type Decoder struct {
	scanner *FrameScanner
	dec     *mp3.Decoder

	buf      []byte
	carry    byte
	hasCarry bool
}

// New builds a decoder over a live byte source. It blocks until the first
// frame has been located and decoded, which fixes the stream format.
func New(src io.Reader) (*Decoder, error) {
	scanner := NewFrameScanner(src)
	dec, err := mp3.NewDecoder(scanner)
	if err != nil {
		return nil, fmt.Errorf("decode stream: %w", err)
	}
	return &Decoder{scanner: scanner, dec: dec}, nil
}

// Format returns the output sample rate and channel count. Valid from
// construction, since New decodes the first frame.
func (d *Decoder) Format() Format {
	return Format{SampleRate: d.dec.SampleRate(), Channels: 2}
}

// SkippedBytes reports garbage bytes discarded during frame resync.
func (d *Decoder) SkippedBytes() int64 {
	return d.scanner.SkippedBytes()
}

// Read fills samples with the next decoded PCM samples and returns how many
// were produced. io.EOF signals the end of the stream; ErrFormatChange a
// fatal mid-stream format switch.
func (d *Decoder) Read(samples []int16) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	need := len(samples) * 2
	if cap(d.buf) < need {
		d.buf = make([]byte, need)
	}
	buf := d.buf[:need]

	off := 0
	if d.hasCarry {
		buf[0] = d.carry
		d.hasCarry = false
		off = 1
	}

	n, err := d.dec.Read(buf[off:])
	total := off + n

	// An odd byte count splits a sample; hold the dangling byte for the
	// next call.
	if total%2 == 1 {
		total--
		d.carry = buf[total]
		d.hasCarry = true
	}

	for i := 0; i < total/2; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}

	if err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("decode frame: %w", err)
	}
	return total / 2, err
}
