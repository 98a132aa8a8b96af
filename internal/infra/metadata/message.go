// Package metadata maintains the persistent now-playing channel and its
// reconnect state machine.
package metadata

import (
	"github.com/airwave-cli/airwave/internal/domain/display"
	"github.com/airwave-cli/airwave/internal/domain/station"
)

// Message is one now-playing snapshot as delivered by the endpoint, over
// websocket text frames and the REST API alike.
type Message struct {
	Station    StationInfo  `json:"station"`
	NowPlaying NowPlaying   `json:"now_playing"`
	Listeners  ListenerInfo `json:"listeners"`
}

// StationInfo carries the default listen URL plus the relay and mount
// sources the station catalog is derived from.
type StationInfo struct {
	ListenURL string  `json:"listen_url"`
	Remotes   []Relay `json:"remotes"`
	Mounts    []Mount `json:"mounts"`
}

// Relay is a primary stream relay.
type Relay struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Mount is a fallback stream mount; same shape as a relay.
type Mount struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// NowPlaying describes the current song. Duration 0 means unknown.
type NowPlaying struct {
	Elapsed  int  `json:"elapsed"`
	Duration int  `json:"duration"`
	Song     Song `json:"song"`
}

// Song identifies a track; identity is the ID.
type Song struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// ListenerInfo reports the live listener count.
type ListenerInfo struct {
	Current int `json:"current"`
}

// Stations derives the selectable station catalog from this snapshot:
// relays and mounts merged, sorted ascending by id.
func (m *Message) Stations() []station.Descriptor {
	remotes := make([]station.Descriptor, 0, len(m.Station.Remotes))
	for _, r := range m.Station.Remotes {
		remotes = append(remotes, station.Descriptor{ID: r.ID, Name: r.Name, URL: r.URL})
	}

	mounts := make([]station.Descriptor, 0, len(m.Station.Mounts))
	for _, mt := range m.Station.Mounts {
		mounts = append(mounts, station.Descriptor{ID: mt.ID, Name: mt.Name, URL: mt.URL})
	}

	return station.Merge(remotes, mounts)
}

// Update converts the snapshot into a display update. A wire duration of
// zero passes through as unknown.
func (m *Message) Update() display.Update {
	song := m.NowPlaying.Song
	return display.Update{
		SongID:    song.ID,
		Title:     song.Title,
		Artist:    song.Artist,
		Album:     song.Album,
		Elapsed:   m.NowPlaying.Elapsed,
		Duration:  m.NowPlaying.Duration,
		Listeners: m.Listeners.Current,
	}
}
