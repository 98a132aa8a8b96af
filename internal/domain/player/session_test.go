package player_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/airwave-cli/airwave/internal/domain/player"
)

// fakeSource emits blocks of a constant marker value so tests can tell
// which station produced which samples.
type fakeSource struct {
	marker int16
	blocks int // -1 = unlimited

	mu     sync.Mutex
	closed bool
	served int
}

func (f *fakeSource) Read(samples []int16) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.blocks >= 0 && f.served >= f.blocks {
		return 0, io.EOF
	}
	f.served++
	for i := range samples {
		samples[i] = f.marker
	}
	return len(samples), nil
}

func (f *fakeSource) Format() player.Format {
	return player.Format{SampleRate: 44100, Channels: 2}
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSource) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeOutput records the first sample of every write.
type fakeOutput struct {
	mu      sync.Mutex
	openErr error
	opened  int
	closed  int
	writes  []int16
}

func (o *fakeOutput) Open(format player.Format) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return o.openErr
	}
	o.opened++
	return nil
}

func (o *fakeOutput) Write(samples []int16) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(samples) > 0 {
		o.writes = append(o.writes, samples[0])
	}
	return nil
}

func (o *fakeOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed++
	return nil
}

func (o *fakeOutput) snapshot() []int16 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int16{}, o.writes...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func openerFor(sources map[string]*fakeSource) player.OpenFunc {
	return func(ctx context.Context, url string) (player.SampleSource, error) {
		src, ok := sources[url]
		if !ok {
			return nil, errors.New("unknown url")
		}
		return src, nil
	}
}

func TestGainMonotonic(t *testing.T) {
	for level := player.MinVolume; level < player.MaxVolume; level++ {
		if player.Gain(level) > player.Gain(level+1) {
			t.Errorf("gain not monotonic between levels %d and %d", level, level+1)
		}
	}

	if player.Gain(player.MinVolume) != 0 {
		t.Error("level 0 should be silence")
	}
	if player.Gain(player.MaxVolume) != 1 {
		t.Error("level 9 should be unity gain")
	}
}

func TestGainDeterministic(t *testing.T) {
	for level := player.MinVolume; level <= player.MaxVolume; level++ {
		if player.Gain(level) != player.Gain(level) {
			t.Errorf("gain for level %d is not deterministic", level)
		}
	}
}

func TestSetVolume(t *testing.T) {
	session := player.NewSession(&fakeOutput{}, openerFor(nil))

	if err := session.SetVolume(4); err != nil {
		t.Fatalf("SetVolume failed: %v", err)
	}
	if session.Volume() != 4 {
		t.Errorf("expected volume 4, got %d", session.Volume())
	}

	// Setting the current level again is a no-op.
	if err := session.SetVolume(4); err != nil {
		t.Errorf("repeated SetVolume should be a no-op, got %v", err)
	}
}

func TestSetVolumeRange(t *testing.T) {
	session := player.NewSession(&fakeOutput{}, openerFor(nil))

	for _, level := range []int{-1, 10, 100} {
		if err := session.SetVolume(level); !errors.Is(err, player.ErrVolumeRange) {
			t.Errorf("level %d: expected ErrVolumeRange, got %v", level, err)
		}
	}
}

func TestPlayAndStop(t *testing.T) {
	src := &fakeSource{marker: 1, blocks: -1}
	out := &fakeOutput{}
	session := player.NewSession(out, openerFor(map[string]*fakeSource{"a": src}))

	session.Play(context.Background(), "a")
	waitFor(t, func() bool { return len(out.snapshot()) > 0 })

	session.Stop()

	if !src.isClosed() {
		t.Error("expected source to be closed after Stop")
	}
}

func TestStationSwitchIsolation(t *testing.T) {
	srcA := &fakeSource{marker: 1, blocks: -1}
	srcB := &fakeSource{marker: 2, blocks: -1}
	out := &fakeOutput{}
	session := player.NewSession(out, openerFor(map[string]*fakeSource{
		"a": srcA,
		"b": srcB,
	}))

	session.Play(context.Background(), "a")
	waitFor(t, func() bool { return len(out.snapshot()) > 0 })

	session.Play(context.Background(), "b")
	waitFor(t, func() bool {
		writes := out.snapshot()
		return len(writes) > 0 && writes[len(writes)-1] == 2
	})
	session.Stop()

	if !srcA.isClosed() {
		t.Error("expected the old station's source to be released")
	}

	// No samples from station A may appear after the first sample of B.
	writes := out.snapshot()
	seenB := false
	for i, v := range writes {
		if v == 2 {
			seenB = true
		}
		if seenB && v == 1 {
			t.Fatalf("sample from old station at position %d after switch", i)
		}
	}
}

func TestStreamEndStopsSilently(t *testing.T) {
	src := &fakeSource{marker: 3, blocks: 2}
	out := &fakeOutput{}
	session := player.NewSession(out, openerFor(map[string]*fakeSource{"a": src}))

	session.Play(context.Background(), "a")
	waitFor(t, func() bool { return src.isClosed() })

	if got := len(out.snapshot()); got != 2 {
		t.Errorf("expected 2 writes before stream end, got %d", got)
	}

	// The session stays usable after a stream ends on its own.
	session.Play(context.Background(), "a")
	session.Stop()
}

func TestOutputOpenFailureReleasesSource(t *testing.T) {
	src := &fakeSource{marker: 1, blocks: -1}
	out := &fakeOutput{openErr: errors.New("device busy")}
	session := player.NewSession(out, openerFor(map[string]*fakeSource{"a": src}))

	session.Play(context.Background(), "a")
	waitFor(t, func() bool { return src.isClosed() })

	if len(out.snapshot()) != 0 {
		t.Error("expected no writes when the device cannot be opened")
	}
}
