package gateway

import (
	"sync"
	"time"

	"github.com/pion/webrtc/v3/pkg/media"
	"gopkg.in/hraban/opus.v2"

	"github.com/rashmiranjanaiet/ai-web/internal/pcm"
	"github.com/rashmiranjanaiet/ai-web/internal/playback"
	"github.com/rashmiranjanaiet/ai-web/internal/wire"
)

const (
	// mimePCM24k labels assistant audio frames on the JSON plane.
	mimePCM24k = "audio/pcm;rate=24000"
	// trackRate is the sample rate of the outgoing Opus track.
	trackRate = 48000
	// frameInterval is the pacing interval of the playback writer.
	frameInterval = 20 * time.Millisecond
)

// wsSink ships paced assistant audio to the browser as JSON audio frames.
type wsSink struct {
	c *client
}

var _ playback.FrameSink = (*wsSink)(nil)

func (s *wsSink) WriteFrame(samples []int16) error {
	data := wire.EncodeBytes(pcm.BytesFromInt16(samples))
	return s.c.write(serverMessage{Type: "audio", Data: data, MIMEType: mimePCM24k})
}

// sampleWriter is the track surface the Opus sink needs.
type sampleWriter interface {
	WriteSample(s media.Sample) error
}

// trackSink upsamples paced 24kHz frames to the track rate, encodes Opus and
// writes the packets to the outgoing WebRTC track.
type trackSink struct {
	enc     *opus.Encoder
	track   sampleWriter
	opusBuf []byte
}

var _ playback.FrameSink = (*trackSink)(nil)

func newTrackSink(track sampleWriter) (*trackSink, error) {
	enc, err := opus.NewEncoder(trackRate, 1, opus.AppVoIP)
	if err != nil {
		return nil, err
	}
	return &trackSink{enc: enc, track: track, opusBuf: make([]byte, 4000)}, nil
}

func (s *trackSink) WriteFrame(samples []int16) error {
	up := upsample2x(samples)
	n, err := s.enc.Encode(up, s.opusBuf)
	if err != nil || n == 0 {
		return err
	}
	pkt := make([]byte, n)
	copy(pkt, s.opusBuf[:n])
	return s.track.WriteSample(media.Sample{Data: pkt, Duration: frameInterval})
}

// upsample2x doubles the sample rate, interpolating between neighbouring
// samples. The last sample is duplicated.
func upsample2x(in []int16) []int16 {
	out := make([]int16, len(in)*2)
	for i, v := range in {
		out[2*i] = v
		next := v
		if i+1 < len(in) {
			next = in[i+1]
		}
		out[2*i+1] = int16((int32(v) + int32(next)) / 2)
	}
	return out
}

// switchSink routes paced frames to the WebRTC track once one is negotiated
// and to the JSON plane before that.
type switchSink struct {
	ws  playback.FrameSink
	mu  sync.RWMutex
	rtc playback.FrameSink
}

var _ playback.FrameSink = (*switchSink)(nil)

func (s *switchSink) WriteFrame(samples []int16) error {
	s.mu.RLock()
	rtc := s.rtc
	s.mu.RUnlock()
	if rtc != nil {
		return rtc.WriteFrame(samples)
	}
	return s.ws.WriteFrame(samples)
}

func (s *switchSink) setRTC(sink playback.FrameSink) {
	s.mu.Lock()
	s.rtc = sink
	s.mu.Unlock()
}
