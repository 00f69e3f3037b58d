// Package live runs the duplex audio session with the assistant service:
// capture blocks go up as transport-safe blobs, transcript deltas and
// synthesized audio come back interleaved on one event channel.
package live

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/rashmiranjanaiet/ai-web/internal/pcm"
	"github.com/rashmiranjanaiet/ai-web/internal/playback"
	"github.com/rashmiranjanaiet/ai-web/internal/transcript"
	"github.com/rashmiranjanaiet/ai-web/internal/wire"
)

// SessionState tracks the lifecycle of one Session.
type SessionState int32

const (
	StateIdle SessionState = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
	StateErrored
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Session owns one realtime exchange: the capture pipeline up, the event
// loop down, and the teardown of both. A Session runs at most once.
type Session struct {
	transport Transport
	source    Source
	writer    AudioWriter
	rec       *transcript.Reconciler
	sched     *playback.Scheduler
	recorder  Recorder

	state    atomic.Int32
	stopCh   chan struct{}
	stopOnce sync.Once
	updates  chan struct{}

	errMu sync.Mutex
	err   error
}

// Option adjusts a Session at construction.
type Option func(*Session)

// WithRecorder wires session counters to a metrics backend.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock substitutes the playback clock, mainly for tests.
func WithClock(c playback.Clock) Option {
	return func(s *Session) { s.sched = playback.NewScheduler(c) }
}

func NewSession(t Transport, src Source, w AudioWriter, rec *transcript.Reconciler, opts ...Option) *Session {
	s := &Session{
		transport: t,
		source:    src,
		writer:    w,
		rec:       rec,
		sched:     playback.NewScheduler(playback.NewWallClock()),
		recorder:  nopRecorder{},
		stopCh:    make(chan struct{}),
		updates:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Err returns the fatal error that ended the session, if any.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Messages returns the reconciled transcript so far.
func (s *Session) Messages() []transcript.Message {
	return s.rec.Messages()
}

// Updates signals transcript or state changes. Receivers take a fresh
// snapshot via Messages and State; signals coalesce.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

func (s *Session) emit() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *Session) setState(st SessionState) {
	s.state.Store(int32(st))
	s.emit()
}

// Start acquires the capture device, connects the channel and runs both
// pipelines. A second Start, concurrent or later, fails synchronously with
// ErrAlreadyActive and leaves the running session untouched.
func (s *Session) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateConnecting)) {
		return ErrAlreadyActive
	}
	s.emit()
	if err := s.source.Open(ctx); err != nil {
		derr := &DeviceAccessError{Cause: err}
		s.fail(derr)
		return derr
	}
	if err := s.transport.Connect(ctx); err != nil {
		cerr := &ChannelError{Op: "connect", Cause: err}
		s.fail(cerr)
		return cerr
	}
	s.setState(StateOpen)
	s.recorder.SessionStarted()
	go s.captureLoop()
	go s.eventLoop()
	return nil
}

// Stop ends the session. A no-op before Start and idempotent after: only the
// first call on a started session runs the teardown, later calls return nil
// without side effects.
func (s *Session) Stop() error {
	if s.State() == StateIdle {
		return nil
	}
	s.stopOnce.Do(func() {
		s.teardown(StateClosed)
		s.recorder.SessionClosed()
	})
	return nil
}

// fail ends the session through the same teardown path as Stop, records the
// fatal error and leaves one plain-language system message in the transcript.
// The transcript note lands before the final state so that a watcher waking
// on the errored state already sees it.
func (s *Session) fail(err error) {
	s.stopOnce.Do(func() {
		s.errMu.Lock()
		s.err = err
		s.errMu.Unlock()
		log.Printf("live: session failed: %v", err)
		s.rec.SystemError(UserMessage(err))
		s.teardown(StateErrored)
		s.recorder.SessionErrored()
	})
}

// teardown releases the channel, then the capture device, then the playback
// path, tolerating resources that are already gone.
func (s *Session) teardown(final SessionState) {
	s.setState(StateClosing)
	close(s.stopCh)
	if err := s.transport.Close(); err != nil {
		log.Printf("live: transport close: %v", err)
	}
	if err := s.source.Close(); err != nil {
		log.Printf("live: source close: %v", err)
	}
	s.writer.Close()
	s.sched.Reset()
	s.setState(final)
}

func (s *Session) captureLoop() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("live: capture loop recovered: %v", r)
		}
	}()
	for {
		select {
		case <-s.stopCh:
			return
		case block, ok := <-s.source.Blocks():
			if !ok {
				return
			}
			blob := wire.EncodeBlob(pcm.Int16FromFloat32(block))
			if err := s.transport.SendAudio(blob); err != nil {
				s.fail(&ChannelError{Op: "send", Cause: err})
				return
			}
			s.recorder.BlockSent()
		}
	}
}

// eventLoop applies inbound events strictly in arrival order. It is the only
// goroutine touching the reconciler and the scheduler, which makes the order
// total across event types.
func (s *Session) eventLoop() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("live: event loop recovered: %v", r)
		}
	}()
	for {
		select {
		case <-s.stopCh:
			return
		case ev, ok := <-s.transport.Events():
			if !ok {
				select {
				case <-s.stopCh:
				default:
					s.fail(&ChannelError{Op: "receive", Cause: errChannelClosed})
				}
				return
			}
			if !s.handle(ev) {
				return
			}
		}
	}
}

func (s *Session) handle(ev Event) bool {
	s.recorder.EventReceived(ev.Type.String())
	switch ev.Type {
	case EventInputTranscript:
		s.rec.ApplyInput(ev.Text)
		s.emit()
	case EventOutputTranscript:
		s.rec.ApplyOutput(ev.Text)
		s.emit()
	case EventAudioChunk:
		buf, err := wire.DecodeAudioData(ev.Audio, pcm.PlaybackRate, 1)
		if err != nil {
			// drop the chunk; the session and the playback cursor continue
			log.Printf("live: dropping audio chunk: %v", err)
			s.recorder.ChunkDropped()
			return true
		}
		s.sched.Schedule(buf)
		s.writer.WritePCM(pcm.Int16FromBytes(ev.Audio))
		s.recorder.AudioScheduled(buf.Duration().Seconds())
	case EventInterrupted:
		s.writer.Reset()
		s.sched.Reset()
	case EventTurnComplete:
		s.rec.CompleteTurn()
		s.writer.FlushTail()
		s.emit()
	case EventError:
		s.fail(&ChannelError{Op: "receive", Cause: ev.Err})
		return false
	}
	return true
}
