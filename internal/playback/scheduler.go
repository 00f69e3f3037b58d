// Package playback schedules decoded assistant audio on the output clock and
// paces delivery toward the speaker path.
package playback

import (
	"sync"
	"time"

	"github.com/rashmiranjanaiet/ai-web/internal/wire"
)

// Clock is the playback timeline. Implementations must be monotonic;
// tests substitute a manual clock.
type Clock interface {
	Now() time.Duration
}

// WallClock measures elapsed time from its creation instant.
type WallClock struct {
	start time.Time
}

func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

func (c *WallClock) Now() time.Duration {
	return time.Since(c.start)
}

// Scheduler picks start times for decoded buffers so consecutive chunks play
// gaplessly: in submission order, never overlapping, never in the past.
type Scheduler struct {
	mu        sync.Mutex
	clock     Clock
	nextStart time.Duration
}

func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Schedule returns the start time chosen for buf and advances the cursor by
// the buffer's duration. The start is the later of the cursor and the
// current clock reading.
func (s *Scheduler) Schedule(buf *wire.AudioBuffer) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.nextStart
	if now := s.clock.Now(); now > start {
		start = now
	}
	s.nextStart = start + buf.Duration()
	return start
}

// Cursor reports where the next buffer would begin if it arrived at or
// before the current cursor position.
func (s *Scheduler) Cursor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStart
}

// Reset rewinds the cursor so the next buffer starts at the current clock
// reading. Used when a turn is interrupted or a session restarts.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.nextStart = 0
	s.mu.Unlock()
}
