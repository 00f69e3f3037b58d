// Package transcript merges streamed transcript deltas into an ordered chat
// history. The service sends fragments of what the user said and what the
// model is saying interleaved on one channel; arrival order is the only
// ordering guarantee, and a turn-complete marker closes both sides.
package transcript

import (
	"sync"

	"github.com/google/uuid"
)

// Role identifies the speaker of a reconciled message.
type Role string

const (
	RoleUser   Role = "user"
	RoleAI     Role = "ai"
	RoleSystem Role = "system"
)

// Message is one reconciled chat entry. Final false means the message is
// still accumulating deltas; clients render it with an in-progress marker.
type Message struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Reconciler holds the chat history for one session. Each role has at most
// one open message per turn; deltas append to it and CompleteTurn seals it.
type Reconciler struct {
	mu       sync.Mutex
	messages []Message
	openUser int
	openAI   int
}

func NewReconciler() *Reconciler {
	return &Reconciler{openUser: -1, openAI: -1}
}

// ApplyInput appends a fragment of the user's speech, opening a user message
// if the turn has none yet.
func (r *Reconciler) ApplyInput(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openUser = r.appendDelta(r.openUser, RoleUser, text)
}

// ApplyOutput appends a fragment of the model's speech, opening an ai message
// if the turn has none yet.
func (r *Reconciler) ApplyOutput(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openAI = r.appendDelta(r.openAI, RoleAI, text)
}

func (r *Reconciler) appendDelta(idx int, role Role, text string) int {
	if idx >= 0 {
		r.messages[idx].Text += text
		return idx
	}
	r.messages = append(r.messages, Message{
		ID:   uuid.New().String(),
		Role: role,
		Text: text,
	})
	return len(r.messages) - 1
}

// CompleteTurn finalizes both open messages. A turn that carried no deltas
// produces nothing: completing with no open messages is a no-op, so a turn
// of model speech alone never fabricates a user message.
func (r *Reconciler) CompleteTurn() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.openUser >= 0 {
		r.messages[r.openUser].Final = true
		r.openUser = -1
	}
	if r.openAI >= 0 {
		r.messages[r.openAI].Final = true
		r.openAI = -1
	}
}

// SystemError appends one finalized system message describing a fatal
// failure in plain language.
func (r *Reconciler) SystemError(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{
		ID:    uuid.New().String(),
		Role:  RoleSystem,
		Text:  text,
		Final: true,
	})
}

// Messages returns a snapshot of the history in arrival order.
func (r *Reconciler) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Reset drops all history for a fresh session.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	r.openUser = -1
	r.openAI = -1
}
