package live

import "context"

// Source is the minimal interface for a capture device. It must emit mono
// float32 blocks at 16kHz, 4096 samples each, until closed.
type Source interface {
	// Open acquires the device. A failure here is fatal for the session.
	Open(ctx context.Context) error
	Blocks() <-chan []float32
	Close() error
}

// AudioWriter consumes decoded 24kHz PCM mono and performs delivery
// (e.g. paced frames toward a speaker path). Implementations should buffer
// internally and pace delivery.
type AudioWriter interface {
	WritePCM(samples []int16)
	FlushTail()
	// Reset drops any queued audio immediately (used on interruption).
	Reset()
	Close()
}

// Recorder receives session counters. The zero implementation drops them.
type Recorder interface {
	SessionStarted()
	SessionClosed()
	SessionErrored()
	BlockSent()
	EventReceived(kind string)
	ChunkDropped()
	AudioScheduled(seconds float64)
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted()        {}
func (nopRecorder) SessionClosed()         {}
func (nopRecorder) SessionErrored()        {}
func (nopRecorder) BlockSent()             {}
func (nopRecorder) EventReceived(string)   {}
func (nopRecorder) ChunkDropped()          {}
func (nopRecorder) AudioScheduled(float64) {}
