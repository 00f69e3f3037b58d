// Package wire packs capture audio for the text-only transport and decodes
// the service's inline audio payloads back into playable buffers.
package wire

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rashmiranjanaiet/ai-web/internal/pcm"
)

// MIMEPCM16k tags every outbound capture blob. The service keys the input
// sample rate off this string, so it never varies.
const MIMEPCM16k = "audio/pcm;rate=16000"

// Blob is one transport-safe audio payload: base64 text plus a MIME tag.
type Blob struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// EncodeBlob packs samples little-endian and base64-encodes them under the
// fixed capture MIME tag.
func EncodeBlob(samples []int16) Blob {
	return Blob{
		Data:     EncodeBytes(pcm.BytesFromInt16(samples)),
		MIMEType: MIMEPCM16k,
	}
}

// EncodeBytes base64-encodes an arbitrary payload for the text transport.
func EncodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBytes reverses EncodeBytes.
func DecodeBytes(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// AudioBuffer is decoded PCM ready for scheduling, one slice per channel.
type AudioBuffer struct {
	Channels   [][]float32
	SampleRate int
	FrameCount int
}

// Duration reports FrameCount at SampleRate.
func (b *AudioBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.FrameCount) * time.Second / time.Duration(b.SampleRate)
}

// MalformedAudioError reports an inline payload whose byte length does not
// divide evenly into 16-bit frames.
type MalformedAudioError struct {
	Len      int
	Channels int
}

func (e *MalformedAudioError) Error() string {
	return fmt.Sprintf("malformed audio chunk: %d bytes does not divide into %d-channel 16-bit frames", e.Len, e.Channels)
}

// DecodeAudioData converts raw little-endian PCM16 into per-channel float32.
// A chunk with a bad length is rejected, not repaired: callers drop it and
// keep the session alive.
func DecodeAudioData(data []byte, sampleRate, channels int) (*AudioBuffer, error) {
	if channels <= 0 {
		channels = 1
	}
	if len(data)%(2*channels) != 0 {
		return nil, &MalformedAudioError{Len: len(data), Channels: channels}
	}
	frames := len(data) / 2 / channels
	buf := &AudioBuffer{
		Channels:   make([][]float32, channels),
		SampleRate: sampleRate,
		FrameCount: frames,
	}
	samples := pcm.Float32FromInt16(pcm.Int16FromBytes(data))
	for ch := 0; ch < channels; ch++ {
		out := make([]float32, frames)
		for i := 0; i < frames; i++ {
			out[i] = samples[i*channels+ch]
		}
		buf.Channels[ch] = out
	}
	return buf, nil
}
