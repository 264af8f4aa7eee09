// Package preview keeps an isolated theme renderer in sync with the
// in-progress draft. Each publish serializes the draft and hands it to a
// sink (the preview server's websocket channel); a theme switch is the only
// structural change that forces a renderer reload, tracked with a monotonic
// generation counter so stale ready signals can never move the state
// machine backward. Last request wins: there is no reload queue and no
// cancellation beyond the generation check.
package preview

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/logging"
)

// State is the renderer loading lifecycle.
type State int

const (
	// StateIdle means no preview has been requested yet.
	StateIdle State = iota
	// StateLoading means a serialization was handed to the renderer and it
	// has not signaled ready for the current generation.
	StateLoading
	// StateReady means the renderer completed its initial render for the
	// current generation.
	StateReady
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Publication is one serialized draft handed to the renderer host. Reload
// is set when the renderer must be replaced with a fresh instance instead
// of hot-applying the config.
type Publication struct {
	Generation uint64          `json:"generation"`
	ThemeID    string          `json:"themeId"`
	Reload     bool            `json:"reload"`
	Config     json.RawMessage `json:"config"`
}

// Sink receives publications. It must not block and must not call back
// into the synchronizer.
type Sink func(Publication)

// Synchronizer is the editor-side half of the preview protocol.
type Synchronizer struct {
	mu         sync.Mutex
	state      State
	generation uint64
	themeID    string
	readyCh    chan struct{}
	sink       Sink
	logger     logging.Logger
}

// New creates a synchronizer delivering publications to sink.
func New(sink Sink, logger logging.Logger) *Synchronizer {
	if logger == nil {
		logger = logging.Nop()
	}

	return &Synchronizer{
		state:   StateIdle,
		readyCh: make(chan struct{}),
		sink:    sink,
		logger:  logger.WithComponent("preview"),
	}
}

// Publish serializes the draft snapshot and hands it to the renderer. The
// first publish, and any publish with a changed theme, increments the
// generation and requests a hard reload; every other publish is pushed
// into the already-running renderer without touching the lifecycle.
func (s *Synchronizer) Publish(snap draft.Snapshot) error {
	config, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reload := s.state == StateIdle || snap.ThemeID != s.themeID
	if reload {
		if s.state == StateLoading {
			// Wake waiters on the superseded generation so they re-check
			// against the new one instead of blocking on a dead channel.
			close(s.readyCh)
		}
		s.generation++
		s.state = StateLoading
		s.readyCh = make(chan struct{})
		s.themeID = snap.ThemeID
	}

	pub := Publication{
		Generation: s.generation,
		ThemeID:    s.themeID,
		Reload:     reload,
		Config:     config,
	}

	s.logger.Debug(context.Background(), "publishing draft",
		"generation", pub.Generation, "reload", pub.Reload, "theme", pub.ThemeID)

	if s.sink != nil {
		s.sink(pub)
	}

	return nil
}

// Ready records the renderer's ready signal for a generation. A signal
// tagged with a stale generation is discarded: it must never transition
// the state backward from a newer Loading to Ready. Returns whether the
// signal was accepted.
func (s *Synchronizer) Ready(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation < s.generation {
		s.logger.Debug(context.Background(), "discarding stale ready signal",
			"got", generation, "current", s.generation)
		return false
	}
	if s.state != StateLoading {
		return false
	}

	s.state = StateReady
	close(s.readyCh)

	return true
}

// Invalidate drops the running renderer instance, forcing the next publish
// to request a hard reload. Used when theme assets change on disk under a
// renderer that already loaded them. Waiters are woken so they re-check.
func (s *Synchronizer) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading {
		close(s.readyCh)
		s.readyCh = make(chan struct{})
	}
	s.state = StateIdle
}

// State returns the current lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Generation returns the current instance generation.
func (s *Synchronizer) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generation
}

// ThemeID returns the theme of the last publication.
func (s *Synchronizer) ThemeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.themeID
}

// AwaitReady blocks until the current generation's renderer signals ready
// or ctx expires. On timeout the state simply stays Loading; callers
// surface that as a persistent loading indicator and editing continues.
// There is no automatic retry: the renderer republishes its ready signal
// on reconnect, which serves as the retry path.
func (s *Synchronizer) AwaitReady(ctx context.Context) error {
	for {
		s.mu.Lock()
		state := s.state
		ch := s.readyCh
		s.mu.Unlock()

		if state != StateLoading {
			return nil
		}

		select {
		case <-ch:
			// A newer generation may have replaced this channel; loop and
			// re-check rather than assuming ready.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
