package gateway

import (
	"github.com/rashmiranjanaiet/ai-web/internal/chat"
	"github.com/rashmiranjanaiet/ai-web/internal/transcript"
)

// clientMessage is the inbound control format. Types: "start", "stop",
// "audio", "chat", "offer", "candidate", "ice-complete", "bye".
type clientMessage struct {
	Type string `json:"type"`
	// audio: base64 little-endian float32 capture block
	Data string `json:"data,omitempty"`
	// chat
	Text string `json:"text,omitempty"`
	// offer
	SDP string `json:"sdp,omitempty"`
	// candidate
	Candidate     string  `json:"candidate,omitempty"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`
}

// serverMessage is the outbound format. Types: "state", "transcript",
// "turn_complete", "audio", "chat", "answer", "candidate", "ice-complete",
// "error".
type serverMessage struct {
	Type string `json:"type"`
	// state
	State string `json:"state,omitempty"`
	// transcript
	Messages []transcript.Message `json:"messages,omitempty"`
	// audio: base64 little-endian PCM16 at the playback rate
	Data     string `json:"data,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	// chat
	Text      string          `json:"text,omitempty"`
	Citations []chat.Citation `json:"citations,omitempty"`
	Route     string          `json:"route,omitempty"`
	// answer
	SDP string `json:"sdp,omitempty"`
	// candidate
	Candidate     string  `json:"candidate,omitempty"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`

	Error string `json:"error,omitempty"`
}
