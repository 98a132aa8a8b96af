// Package display tracks the now-playing state shown to the user.
package display

import (
	"fmt"
	"sync"
)

// Change classifies the effect of applying a now-playing update.
type Change int

const (
	// ChangeNewSong means the song identity differs from the displayed one;
	// title, artist and album must be re-rendered.
	ChangeNewSong Change = iota

	// ChangeProgress means the same song is still playing; only elapsed
	// time and listener count were refreshed.
	ChangeProgress
)

// Update is one parsed now-playing snapshot. Duration 0 means the total
// length is unknown, not zero.
type Update struct {
	SongID    string
	Title     string
	Artist    string
	Album     string
	Elapsed   int
	Duration  int
	Listeners int
}

// Snapshot is a copy of the displayed state, safe to render without locking.
type Snapshot struct {
	SongID    string
	Title     string
	Artist    string
	Album     string
	Elapsed   int
	Duration  int // 0 = unknown
	Listeners int
}

// State is the single displayed now-playing state, shared by the metadata
// loop and the progress ticker. It is safe for concurrent access.
type State struct {
	mu sync.Mutex

	songID    string
	title     string
	artist    string
	album     string
	elapsed   int
	duration  int
	listeners int
	started   bool
}

// NewState creates an empty display state.
func NewState() *State {
	return &State{}
}

// Apply merges a now-playing update into the state and reports whether it
// starts a new song or only refreshes progress. Updates always reset the
// elapsed counter to the reported value.
func (s *State) Apply(u Update) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	newSong := u.SongID != s.songID || !s.started

	s.elapsed = u.Elapsed
	s.duration = u.Duration
	s.listeners = u.Listeners
	s.started = true

	if !newSong {
		return ChangeProgress
	}

	s.songID = u.SongID
	s.title = u.Title
	s.artist = u.Artist
	s.album = u.Album
	return ChangeNewSong
}

// Tick advances the elapsed counter by one second. It is driven by a
// periodic timer between metadata updates and does nothing before the
// first update arrives. When the total duration is known, elapsed does
// not advance past it.
func (s *State) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.duration > 0 && s.elapsed >= s.duration {
		return
	}
	s.elapsed++
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		SongID:    s.songID,
		Title:     s.title,
		Artist:    s.artist,
		Album:     s.album,
		Elapsed:   s.elapsed,
		Duration:  s.duration,
		Listeners: s.listeners,
	}
}

// Progress formats the elapsed position, with the total appended when it
// is known: "01:14 / 05:14", or just "01:14" for live streams that report
// no duration.
func (s Snapshot) Progress() string {
	if s.Duration > 0 {
		return fmt.Sprintf("%s / %s", FormatDuration(s.Elapsed), FormatDuration(s.Duration))
	}
	return FormatDuration(s.Elapsed)
}

// FormatDuration renders a second count as "MM:SS".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
