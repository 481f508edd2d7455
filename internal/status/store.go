package status

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/muurk/homedash/internal/backend"
)

// Store holds the current Snapshot and the last poll error.
//
// Only the Poller writes to a Store. Readers get the snapshot pointer
// through a single atomic load, so they never see a half-replaced state.
type Store struct {
	current atomic.Pointer[Snapshot]

	mu      sync.RWMutex
	lastErr error

	updates chan struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		updates: make(chan struct{}, 1),
	}
}

// Current returns the latest snapshot, or nil before the first successful
// poll. The snapshot must be treated as read-only.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace installs snap as the current snapshot and clears the error.
func (s *Store) Replace(snap *Snapshot) {
	s.current.Store(snap)

	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()

	s.notify()
}

// Fail records a poll failure. The current snapshot is left untouched.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	s.notify()
}

// Err returns the error of the most recent poll, nil if it succeeded.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// ErrorMessage is the banner text shown while the last poll failed.
func (s *Store) ErrorMessage() string {
	err := s.Err()
	if err == nil {
		return ""
	}
	return "Cannot load backend status: " + backend.ShortMessage(err)
}

// Updates delivers a signal after every Replace or Fail. Signals coalesce:
// a slow reader sees one pending signal, not a backlog.
func (s *Store) Updates() <-chan struct{} {
	return s.updates
}

func (s *Store) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Sensor looks up a sensor in the current snapshot. It never panics, also
// before the first poll.
func (s *Store) Sensor(name string) (Value, bool) {
	return s.Current().Sensor(name)
}

// TimerText formats the current snapshot's timer as MM:SS.
func (s *Store) TimerText() string {
	snap := s.Current()
	if snap == nil {
		return FormatTimer(nil)
	}
	seconds := snap.TimerSeconds
	return FormatTimer(&seconds)
}

// ColorPreview returns the confirmed light colour if the backend reported
// one, otherwise draft. It is for display only.
func (s *Store) ColorPreview(draft RGB) RGB {
	if c, ok := s.Current().BRGBColor(); ok {
		return c
	}
	return draft
}

// FormatTimer formats seconds as MM:SS. Nil or negative input counts as 0
// and minutes are not wrapped at 60.
func FormatTimer(seconds *int) string {
	if seconds == nil {
		return FormatSeconds(0)
	}
	return FormatSeconds(*seconds)
}

// FormatSeconds is FormatTimer for a plain value.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
