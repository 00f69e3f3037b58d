// Package pcm converts between the sample representations used on the two
// audio paths: float32 capture blocks going up and 16-bit PCM coming back.
// Capture and playback run on different clocks (16k vs 24k); nothing in this
// package mixes the two.
package pcm

import (
	"encoding/binary"
	"math"
)

const (
	// CaptureRate is the microphone clock in Hz.
	CaptureRate = 16000
	// PlaybackRate is the synthesized-audio clock in Hz.
	PlaybackRate = 24000
	// BlockSamples is the number of float32 samples per capture block.
	BlockSamples = 4096
)

// Int16FromFloat32 scales each sample by 32768 and truncates toward zero.
// Out-of-range samples wrap instead of clamping, matching 16-bit array
// assignment semantics.
func Int16FromFloat32(src []float32) []int16 {
	out := make([]int16, len(src))
	for i, f := range src {
		out[i] = int16(int32(f * 32768))
	}
	return out
}

// Float32FromInt16 maps samples back into [-1, 1).
func Float32FromInt16(src []int16) []float32 {
	out := make([]float32, len(src))
	for i, s := range src {
		out[i] = float32(s) / 32768
	}
	return out
}

// BytesFromInt16 packs samples little-endian, two bytes each.
func BytesFromInt16(src []int16) []byte {
	out := make([]byte, len(src)*2)
	for i, s := range src {
		binary.LittleEndian.PutUint16(out[i*2:(i+1)*2], uint16(s))
	}
	return out
}

// Int16FromBytes unpacks a little-endian buffer. Expects even length;
// a trailing odd byte is ignored.
func Int16FromBytes(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2 : i*2+2]))
	}
	return out
}

// Float32FromBytes reinterprets little-endian IEEE 754 bytes as samples.
// Trailing bytes short of four are ignored.
func Float32FromBytes(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : i*4+4]))
	}
	return out
}
