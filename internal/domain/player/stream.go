package player

import (
	"context"
	"io"

	"github.com/airwave-cli/airwave/internal/infra/decoder"
	"github.com/airwave-cli/airwave/internal/infra/source"
)

// OpenStream returns the production OpenFunc: a streaming HTTP GET against
// the station URL with an MP3 decoder stacked on the response body.
func OpenStream(client *source.Client) OpenFunc {
	return func(ctx context.Context, url string) (SampleSource, error) {
		body, err := client.Connect(ctx, url)
		if err != nil {
			return nil, err
		}

		dec, err := decoder.New(body)
		if err != nil {
			body.Close()
			return nil, err
		}

		return &httpStream{dec: dec, body: body}, nil
	}
}

type httpStream struct {
	dec  *decoder.Decoder
	body io.ReadCloser
}

func (h *httpStream) Read(samples []int16) (int, error) {
	return h.dec.Read(samples)
}

func (h *httpStream) Format() Format {
	f := h.dec.Format()
	return Format{SampleRate: f.SampleRate, Channels: f.Channels}
}

func (h *httpStream) Close() error {
	return h.body.Close()
}
