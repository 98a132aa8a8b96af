// Package decoder turns a live MP3 byte stream into a lazy sequence of
// PCM samples. A frame scanner owns the staging buffer and frame resync;
// decoding of validated frames is delegated to go-mp3.
package decoder

const headerSize = 4

// Layer III bitrates in kbit/s, indexed by the header bitrate field.
// Index 0 (free format) and 15 are invalid.
var (
	bitratesMPEG1 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	bitratesMPEG2 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}
)

var sampleRatesMPEG1 = [3]int{44100, 48000, 32000}

// frameHeader is the decoded view of one 4-byte MP3 frame header.
type frameHeader struct {
	sampleRate int
	channels   int
	length     int // total frame size in bytes, header included
}

// parseFrameHeader validates the first four bytes of b as an MPEG Layer III
// frame header. Free-format and reserved field values are rejected; the
// scanner treats those positions as garbage and resyncs.
func parseFrameHeader(b []byte) (frameHeader, bool) {
	if len(b) < headerSize {
		return frameHeader{}, false
	}

	if b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return frameHeader{}, false
	}

	version := (b[1] >> 3) & 0x03 // 0: MPEG2.5, 1: reserved, 2: MPEG2, 3: MPEG1
	if version == 1 {
		return frameHeader{}, false
	}

	layer := (b[1] >> 1) & 0x03 // 1: Layer III
	if layer != 1 {
		return frameHeader{}, false
	}

	bitrateIndex := b[2] >> 4
	if bitrateIndex == 0 || bitrateIndex == 15 {
		return frameHeader{}, false
	}

	sampleRateIndex := (b[2] >> 2) & 0x03
	if sampleRateIndex == 3 {
		return frameHeader{}, false
	}

	padding := int((b[2] >> 1) & 0x01)

	sampleRate := sampleRatesMPEG1[sampleRateIndex]
	var bitrate, sizeFactor int
	switch version {
	case 3: // MPEG1
		bitrate = bitratesMPEG1[bitrateIndex]
		sizeFactor = 144000
	case 2: // MPEG2
		bitrate = bitratesMPEG2[bitrateIndex]
		sampleRate /= 2
		sizeFactor = 72000
	default: // MPEG2.5
		bitrate = bitratesMPEG2[bitrateIndex]
		sampleRate /= 4
		sizeFactor = 72000
	}

	channels := 2
	if b[3]>>6 == 3 { // mono channel mode
		channels = 1
	}

	length := sizeFactor*bitrate/sampleRate + padding
	if length <= headerSize {
		return frameHeader{}, false
	}

	return frameHeader{
		sampleRate: sampleRate,
		channels:   channels,
		length:     length,
	}, true
}
