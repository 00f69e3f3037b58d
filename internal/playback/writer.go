package playback

import (
	"sync"
	"time"

	"github.com/rashmiranjanaiet/ai-web/internal/pcm"
)

// FrameSink receives paced 20ms PCM frames at the playback rate.
type FrameSink interface {
	WriteFrame(samples []int16) error
}

// PacedWriter buffers scheduled 24kHz mono PCM and delivers it to a sink in
// 20ms frames on a real-time ticker.
type PacedWriter struct {
	sink         FrameSink
	pcmBuf       []int16
	frameSamples int
	frames       chan []int16
	stopCh       chan struct{}
	stopped      bool
	mu           sync.Mutex
}

// NewPacedWriter constructs a paced writer with 20ms frames at 24kHz mono.
func NewPacedWriter(sink FrameSink) *PacedWriter {
	w := &PacedWriter{
		sink:         sink,
		frameSamples: pcm.PlaybackRate * 20 / 1000,
		frames:       make(chan []int16, 512),
		stopCh:       make(chan struct{}),
	}
	go w.pacer()
	return w
}

// WritePCM buffers decoded samples and emits full frames toward the sink.
func (w *PacedWriter) WritePCM(samples []int16) {
	if len(samples) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pcmBuf = append(w.pcmBuf, samples...)
	for len(w.pcmBuf) >= w.frameSamples {
		frame := make([]int16, w.frameSamples)
		copy(frame, w.pcmBuf[:w.frameSamples])
		copy(w.pcmBuf, w.pcmBuf[w.frameSamples:])
		w.pcmBuf = w.pcmBuf[:len(w.pcmBuf)-w.frameSamples]
		w.pushFrame(frame)
	}
}

// FlushTail zero-pads any remaining PCM to a full frame so the tail of a
// turn is not held back waiting for more audio.
func (w *PacedWriter) FlushTail() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pcmBuf) == 0 {
		return
	}
	pad := make([]int16, w.frameSamples)
	copy(pad, w.pcmBuf)
	w.pcmBuf = w.pcmBuf[:0]
	w.pushFrame(pad)
}

// Reset clears buffered and queued audio for an immediate interruption.
func (w *PacedWriter) Reset() {
	w.mu.Lock()
	for {
		select {
		case <-w.frames:
		default:
			w.pcmBuf = w.pcmBuf[:0]
			w.mu.Unlock()
			return
		}
	}
}

// Close stops the pacer. Safe to call more than once.
func (w *PacedWriter) Close() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.stopCh)
	}
	w.mu.Unlock()
}

func (w *PacedWriter) pacer() {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			select {
			case frame := <-w.frames:
				_ = w.sink.WriteFrame(frame)
			default:
			}
		}
	}
}

// pushFrame enqueues a frame, blocking until space is available or stopped.
func (w *PacedWriter) pushFrame(frame []int16) {
	for {
		select {
		case <-w.stopCh:
			return
		case w.frames <- frame:
			return
		}
	}
}
