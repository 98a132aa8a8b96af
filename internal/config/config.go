// Package config provides endpoint configuration with optional .env overrides.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Default endpoints for the Code Radio network. Both speak the same
// now-playing snapshot schema; the websocket pushes updates, the REST
// endpoint serves one-shot snapshots.
const (
	DefaultWebsocketURL = "wss://coderadio-admin.freecodecamp.org/api/live/nowplaying/coderadio"
	DefaultAPIURL       = "https://coderadio-admin.freecodecamp.org/api/live/nowplaying/coderadio"
)

// Config holds the remote endpoints used by the client.
type Config struct {
	WebsocketURL string
	APIURL       string
}

// Load returns the configuration, applying overrides from the environment.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{
		WebsocketURL: DefaultWebsocketURL,
		APIURL:       DefaultAPIURL,
	}

	if v := os.Getenv("AIRWAVE_WEBSOCKET_URL"); v != "" {
		cfg.WebsocketURL = v
	}
	if v := os.Getenv("AIRWAVE_API_URL"); v != "" {
		cfg.APIURL = v
	}

	return cfg
}
