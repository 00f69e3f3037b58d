package live

import (
	"errors"
	"fmt"
)

// ErrAlreadyActive rejects a Start while a session is running or already
// finished. A Session runs at most once; callers build a new one to retry.
var ErrAlreadyActive = errors.New("session already active")

var errChannelClosed = errors.New("event channel closed")

// DeviceAccessError reports that the capture device could not be acquired.
// It is fatal for the starting session and is never retried internally.
type DeviceAccessError struct {
	Cause error
}

func (e *DeviceAccessError) Error() string {
	return fmt.Sprintf("device access failed: %v", e.Cause)
}

func (e *DeviceAccessError) Unwrap() error { return e.Cause }

// ChannelError reports a failure of the realtime channel. It terminates the
// session; there is no automatic reconnect.
type ChannelError struct {
	Op    string
	Cause error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("live channel %s: %v", e.Op, e.Cause)
}

func (e *ChannelError) Unwrap() error { return e.Cause }

// UserMessage renders a fatal error as one plain-language line fit for the
// transcript and the browser, without wire or API detail.
func UserMessage(err error) string {
	var dev *DeviceAccessError
	if errors.As(err, &dev) {
		return "Microphone access failed. Check the browser permissions and start again."
	}
	var ch *ChannelError
	if errors.As(err, &ch) {
		return "The connection to the assistant was lost. Start a new session to continue."
	}
	return "The session ended unexpectedly. Start a new session to continue."
}
