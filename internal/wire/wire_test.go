package wire

import (
	"errors"
	"testing"
	"time"

	"github.com/rashmiranjanaiet/ai-web/internal/pcm"
)

func TestEncodeBlob_RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 512, -513}
	blob := EncodeBlob(samples)
	if blob.MIMEType != MIMEPCM16k {
		t.Fatalf("mime = %q, want %q", blob.MIMEType, MIMEPCM16k)
	}
	raw, err := DecodeBytes(blob.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := pcm.Int16FromBytes(raw)
	if len(got) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(got))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestEncodeBytes_RoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{0},
		{0xff},
		{1, 2, 3},
		{0x00, 0x80, 0xff, 0x7f, 0x10},
	}
	for _, in := range cases {
		got, err := DecodeBytes(EncodeBytes(in))
		if err != nil {
			t.Fatalf("decode %v: %v", in, err)
		}
		if len(got) != len(in) {
			t.Fatalf("length %d, want %d", len(got), len(in))
		}
		for i := range in {
			if got[i] != in[i] {
				t.Fatalf("byte %d = %#x, want %#x", i, got[i], in[i])
			}
		}
	}
}

func TestEncodeBlob_CaptureBlockLength(t *testing.T) {
	// a full zero capture block: 4096 samples, 8192 bytes, padded base64
	block := make([]int16, pcm.BlockSamples)
	blob := EncodeBlob(block)
	wantLen := (pcm.BlockSamples*2 + 2) / 3 * 4
	if len(blob.Data) != wantLen {
		t.Fatalf("base64 length = %d, want %d", len(blob.Data), wantLen)
	}
}

func TestDecodeAudioData_Mono(t *testing.T) {
	data := pcm.BytesFromInt16([]int16{16384, -32768, 0})
	buf, err := DecodeAudioData(data, pcm.PlaybackRate, 1)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.FrameCount != 3 {
		t.Fatalf("frames = %d, want 3", buf.FrameCount)
	}
	ch := buf.Channels[0]
	if ch[0] != 0.5 || ch[1] != -1.0 || ch[2] != 0 {
		t.Fatalf("unexpected samples: %v", ch)
	}
}

func TestDecodeAudioData_Stereo(t *testing.T) {
	// interleaved L R L R
	data := pcm.BytesFromInt16([]int16{100, 200, 300, 400})
	buf, err := DecodeAudioData(data, 48000, 2)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.FrameCount != 2 {
		t.Fatalf("frames = %d, want 2", buf.FrameCount)
	}
	l, r := buf.Channels[0], buf.Channels[1]
	if l[0] != 100.0/32768 || l[1] != 300.0/32768 {
		t.Fatalf("left channel wrong: %v", l)
	}
	if r[0] != 200.0/32768 || r[1] != 400.0/32768 {
		t.Fatalf("right channel wrong: %v", r)
	}
}

func TestDecodeAudioData_OddLength(t *testing.T) {
	_, err := DecodeAudioData([]byte{1, 2, 3}, pcm.PlaybackRate, 1)
	var mal *MalformedAudioError
	if !errors.As(err, &mal) {
		t.Fatalf("expected MalformedAudioError, got %v", err)
	}
	if mal.Len != 3 || mal.Channels != 1 {
		t.Fatalf("unexpected error fields: %+v", mal)
	}
}

func TestAudioBuffer_Duration(t *testing.T) {
	buf := &AudioBuffer{SampleRate: pcm.PlaybackRate, FrameCount: 24000}
	if d := buf.Duration(); d != time.Second {
		t.Fatalf("duration = %v, want 1s", d)
	}
	half := &AudioBuffer{SampleRate: pcm.PlaybackRate, FrameCount: 12000}
	if d := half.Duration(); d != 500*time.Millisecond {
		t.Fatalf("duration = %v, want 500ms", d)
	}
}
