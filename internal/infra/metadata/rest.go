package metadata

import (
	"context"
	"fmt"

	"resty.dev/v3"
)

// FetchSnapshot fetches one now-playing snapshot over plain request/response
// HTTP. The endpoint shares the websocket message schema; this path serves
// the station-listing collaborator, which does not need the live channel.
func FetchSnapshot(ctx context.Context, url string) (*Message, error) {
	client := resty.New()
	defer client.Close()

	var msg Message
	res, err := client.R().
		SetContext(ctx).
		SetResult(&msg).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("snapshot request: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("snapshot request: status %s", res.Status())
	}

	return &msg, nil
}
