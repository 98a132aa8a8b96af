package config_test

import (
	"testing"

	"github.com/airwave-cli/airwave/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AIRWAVE_WEBSOCKET_URL", "")
	t.Setenv("AIRWAVE_API_URL", "")

	cfg := config.Load()

	if cfg.WebsocketURL != config.DefaultWebsocketURL {
		t.Errorf("expected default websocket URL, got %q", cfg.WebsocketURL)
	}
	if cfg.APIURL != config.DefaultAPIURL {
		t.Errorf("expected default API URL, got %q", cfg.APIURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AIRWAVE_WEBSOCKET_URL", "wss://example.com/live")
	t.Setenv("AIRWAVE_API_URL", "https://example.com/api")

	cfg := config.Load()

	if cfg.WebsocketURL != "wss://example.com/live" {
		t.Errorf("expected websocket override, got %q", cfg.WebsocketURL)
	}
	if cfg.APIURL != "https://example.com/api" {
		t.Errorf("expected API override, got %q", cfg.APIURL)
	}
}
