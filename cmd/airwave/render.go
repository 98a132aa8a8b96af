package main

import (
	"fmt"
	"sync"

	"github.com/airwave-cli/airwave/internal/domain/display"
	"github.com/airwave-cli/airwave/internal/domain/player"
)

// renderer writes now-playing information to stdout. Song details are
// printed as regular lines; the status line is redrawn in place with a
// carriage return so progress and volume update without scrolling.
type renderer struct {
	mu      sync.Mutex
	state   *display.State
	session *player.Session
}

func newRenderer(state *display.State, session *player.Session) *renderer {
	return &renderer{state: state, session: session}
}

// NewSong prints the track details for the song that just started and a
// fresh status line below them.
func (r *renderer) NewSong() {
	snap := r.state.Snapshot()
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Printf("\nSong:       %s\nArtist:     %s\nAlbum:      %s\n", snap.Title, snap.Artist, snap.Album)
	r.statusLocked(snap)
}

// Progress redraws the status line in place.
func (r *renderer) Progress() {
	snap := r.state.Snapshot()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusLocked(snap)
}

func (r *renderer) statusLocked(snap display.Snapshot) {
	// Trailing spaces clear leftovers from a longer previous line.
	fmt.Printf("\r%s | %s | Listeners: %d   ", r.volumeLabel(), snap.Progress(), snap.Listeners)
}

func (r *renderer) volumeLabel() string {
	if r.session == nil {
		return "Volume -/9"
	}
	return fmt.Sprintf("Volume %d/9", r.session.Volume())
}
