package gateway

import (
	"log"

	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v3"
	"gopkg.in/hraban/opus.v2"

	"github.com/rashmiranjanaiet/ai-web/internal/pcm"
)

// micDecodeBuf holds the largest Opus frame at 16kHz mono (120ms).
const micDecodeBuf = 1920

// newPeerConnection prepares a PeerConnection with default codecs and
// interceptors and an outgoing mono Opus track for assistant audio.
func newPeerConnection() (*webrtc.PeerConnection, *webrtc.TrackLocalStaticSample, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, nil, err
	}
	ir := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, ir); err != nil {
		return nil, nil, err
	}
	api := webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine), webrtc.WithInterceptorRegistry(ir))

	pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}}})
	if err != nil {
		return nil, nil, err
	}
	outTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: trackRate, Channels: 1},
		"assistant-audio", "assistant",
	)
	if err != nil {
		_ = pc.Close()
		return nil, nil, err
	}
	if _, err := pc.AddTrack(outTrack); err != nil {
		_ = pc.Close()
		return nil, nil, err
	}
	return pc, outTrack, nil
}

// pumpMic decodes the remote Opus mic track to 16kHz PCM and feeds the
// capture source in fixed-size blocks. Runs until the track ends.
func (c *client) pumpMic(remote *webrtc.TrackRemote) {
	dec, err := opus.NewDecoder(pcm.CaptureRate, 1)
	if err != nil {
		log.Printf("gateway: opus decoder: %v", err)
		return
	}
	samples := make([]int16, micDecodeBuf)
	pending := make([]float32, 0, pcm.BlockSamples*2)
	for {
		pkt, _, readErr := remote.ReadRTP()
		if readErr != nil {
			return
		}
		if len(pkt.Payload) == 0 {
			continue
		}
		n, decErr := dec.Decode(pkt.Payload, samples)
		if decErr != nil {
			log.Printf("gateway: opus decode: %v", decErr)
			continue
		}
		src := c.src.Load()
		if src == nil {
			continue
		}
		pending = pushBlocks(src, pending, pcm.Float32FromInt16(samples[:n]))
	}
}
