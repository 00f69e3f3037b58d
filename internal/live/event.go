package live

import (
	"context"

	"github.com/rashmiranjanaiet/ai-web/internal/wire"
)

// EventType discriminates inbound events. Arrival order on the Events
// channel is the only ordering guarantee across types.
type EventType int

const (
	// EventInputTranscript carries a fragment of what the user said.
	EventInputTranscript EventType = iota + 1
	// EventOutputTranscript carries a fragment of what the model is saying.
	EventOutputTranscript
	// EventAudioChunk carries decoded PCM16 bytes at 24kHz mono.
	EventAudioChunk
	// EventInterrupted marks the model being cut off mid-turn.
	EventInterrupted
	// EventTurnComplete marks a turn boundary, not the end of the session.
	EventTurnComplete
	// EventError carries an out-of-band channel failure.
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventInputTranscript:
		return "input_transcript"
	case EventOutputTranscript:
		return "output_transcript"
	case EventAudioChunk:
		return "audio_chunk"
	case EventInterrupted:
		return "interrupted"
	case EventTurnComplete:
		return "turn_complete"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one inbound item from the realtime channel. Exactly one payload
// field is meaningful per type.
type Event struct {
	Type  EventType
	Text  string
	Audio []byte
	Err   error
}

// Transport is the realtime channel to the assistant service. The concrete
// vendor protocol stays behind this interface.
type Transport interface {
	Connect(ctx context.Context) error
	SendAudio(blob wire.Blob) error
	Events() <-chan Event
	Close() error
}
