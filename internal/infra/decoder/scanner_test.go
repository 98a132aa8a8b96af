package decoder

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"
)

// makeFrame builds a syntactically valid MP3 frame from the given header
// bytes, padding the payload with fill. The fill byte must not be 0xFF so
// payloads never contain a frame sync.
func makeFrame(t *testing.T, header []byte, fill byte) []byte {
	t.Helper()

	h, ok := parseFrameHeader(header)
	if !ok {
		t.Fatalf("test header %x is not valid", header)
	}

	frame := make([]byte, h.length)
	copy(frame, header)
	for i := headerSize; i < len(frame); i++ {
		frame[i] = fill
	}
	return frame
}

func testStream(t *testing.T) []byte {
	t.Helper()

	header := []byte{0xFF, 0xFB, 0x90, 0x64} // 128k 44100 stereo
	var stream []byte
	for _, fill := range []byte{0x11, 0x22, 0x33} {
		stream = append(stream, makeFrame(t, header, fill)...)
	}
	return stream
}

// chunkReader delivers its data in fixed-size chunks, simulating a slowly
// arriving network body with arbitrary read boundaries.
type chunkReader struct {
	data []byte
	size int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.size
	if n > len(c.data) {
		n = len(c.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func TestScannerCleanStream(t *testing.T) {
	stream := testStream(t)

	scanner := NewFrameScanner(bytes.NewReader(stream))
	got, err := io.ReadAll(scanner)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if !bytes.Equal(got, stream) {
		t.Errorf("expected %d frame bytes back, got %d", len(stream), len(got))
	}
	if scanner.SkippedBytes() != 0 {
		t.Errorf("expected no skipped bytes, got %d", scanner.SkippedBytes())
	}

	rate, channels, ok := scanner.Format()
	if !ok {
		t.Fatal("expected format to be known after scanning")
	}
	if rate != 44100 || channels != 2 {
		t.Errorf("expected 44100Hz/2ch, got %dHz/%dch", rate, channels)
	}
}

func TestScannerChunkBoundaryIndependence(t *testing.T) {
	stream := testStream(t)

	whole := NewFrameScanner(bytes.NewReader(stream))
	want, err := io.ReadAll(whole)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	for _, size := range []int{1, 3, 7, 100, 417, 1000} {
		scanner := NewFrameScanner(&chunkReader{data: stream, size: size})
		got, err := io.ReadAll(scanner)
		if err != nil {
			t.Fatalf("chunk size %d: ReadAll failed: %v", size, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("chunk size %d: output differs from whole-stream decode", size)
		}
	}

	scanner := NewFrameScanner(iotest.OneByteReader(bytes.NewReader(stream)))
	got, err := io.ReadAll(scanner)
	if err != nil {
		t.Fatalf("one-byte reads: ReadAll failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("one-byte reads: output differs from whole-stream decode")
	}
}

func TestScannerSkipsGarbagePrefix(t *testing.T) {
	stream := testStream(t)

	garbage := bytes.Repeat([]byte{0x42, 0x00, 0x13}, 91) // 273 bytes, no sync
	withGarbage := append(append([]byte{}, garbage...), stream...)

	scanner := NewFrameScanner(bytes.NewReader(withGarbage))
	got, err := io.ReadAll(scanner)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if !bytes.Equal(got, stream) {
		t.Error("expected garbage prefix to be skipped without altering frames")
	}
	if scanner.SkippedBytes() != int64(len(garbage)) {
		t.Errorf("expected %d skipped bytes, got %d", len(garbage), scanner.SkippedBytes())
	}
}

func TestScannerRejectsFalseSync(t *testing.T) {
	stream := testStream(t)

	// A dangling header with no frame behind it: the lookahead lands in
	// the first real frame's payload and fails to parse, forcing a resync.
	falseSync := []byte{0xFF, 0xFB, 0x90, 0x64}
	input := append(append([]byte{}, falseSync...), stream...)

	scanner := NewFrameScanner(bytes.NewReader(input))
	got, err := io.ReadAll(scanner)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if !bytes.Equal(got, stream) {
		t.Error("expected false sync to be skipped without losing frames")
	}
	if scanner.SkippedBytes() != int64(len(falseSync)) {
		t.Errorf("expected %d skipped bytes, got %d", len(falseSync), scanner.SkippedBytes())
	}
}

func TestScannerDropsTrailingPartialFrame(t *testing.T) {
	stream := testStream(t)
	header := []byte{0xFF, 0xFB, 0x90, 0x64}
	partial := makeFrame(t, header, 0x55)[:100]

	scanner := NewFrameScanner(bytes.NewReader(append(append([]byte{}, stream...), partial...)))
	got, err := io.ReadAll(scanner)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if !bytes.Equal(got, stream) {
		t.Errorf("expected only whole frames, got %d bytes (want %d)", len(got), len(stream))
	}
}

func TestScannerFormatChangeIsFatal(t *testing.T) {
	frame44 := makeFrame(t, []byte{0xFF, 0xFB, 0x90, 0x64}, 0x11)
	frame48 := makeFrame(t, []byte{0xFF, 0xFB, 0x94, 0x64}, 0x22)
	input := append(append([]byte{}, frame44...), frame48...)

	scanner := NewFrameScanner(bytes.NewReader(input))
	got, err := io.ReadAll(scanner)

	if !errors.Is(err, ErrFormatChange) {
		t.Fatalf("expected ErrFormatChange, got %v", err)
	}
	if !bytes.Equal(got, frame44) {
		t.Error("expected the first frame to be emitted before the fatal error")
	}

	// The error is sticky.
	if _, err := scanner.Read(make([]byte, 16)); !errors.Is(err, ErrFormatChange) {
		t.Errorf("expected sticky ErrFormatChange, got %v", err)
	}
}

func TestScannerEmptySource(t *testing.T) {
	scanner := NewFrameScanner(bytes.NewReader(nil))

	if _, err := scanner.Read(make([]byte, 16)); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestScannerSourceError(t *testing.T) {
	scanner := NewFrameScanner(iotest.ErrReader(errors.New("connection reset")))

	_, err := scanner.Read(make([]byte, 16))
	if err == nil || errors.Is(err, io.EOF) {
		t.Errorf("expected a read error, got %v", err)
	}
}
