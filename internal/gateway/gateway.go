// Package gateway terminates the browser connection: JSON control messages
// and WebRTC audio share one WebSocket, bridged to a live session per client.
package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v3"

	"github.com/rashmiranjanaiet/ai-web/internal/chat"
	"github.com/rashmiranjanaiet/ai-web/internal/live"
	"github.com/rashmiranjanaiet/ai-web/internal/pcm"
	"github.com/rashmiranjanaiet/ai-web/internal/playback"
	"github.com/rashmiranjanaiet/ai-web/internal/transcript"
)

// chatTimeout bounds one text chat round trip.
const chatTimeout = 30 * time.Second

// Chat answers routed text questions.
type Chat interface {
	Ask(ctx context.Context, question string) (*chat.Reply, error)
}

// Recorder extends the session counters with gateway and chat metrics.
type Recorder interface {
	live.Recorder
	ClientConnected()
	ClientDisconnected()
	RecordChat(route string, seconds float64)
	RecordChatFailure()
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted()            {}
func (nopRecorder) SessionClosed()             {}
func (nopRecorder) SessionErrored()            {}
func (nopRecorder) BlockSent()                 {}
func (nopRecorder) EventReceived(string)       {}
func (nopRecorder) ChunkDropped()              {}
func (nopRecorder) AudioScheduled(float64)     {}
func (nopRecorder) ClientConnected()           {}
func (nopRecorder) ClientDisconnected()        {}
func (nopRecorder) RecordChat(string, float64) {}
func (nopRecorder) RecordChatFailure()         {}

// Handler serves gateway clients.
type Handler struct {
	liveCfg live.Config
	chat    Chat
	rec     Recorder
}

// NewHandler builds a gateway. chatClient may be nil when the text path is
// not configured; rec may be nil to disable metrics.
func NewHandler(liveCfg live.Config, chatClient Chat, rec Recorder) *Handler {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Handler{liveCfg: liveCfg, chat: chatClient, rec: rec}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  65536,
	WriteBufferSize: 65536,
	CheckOrigin: func(r *http.Request) bool {
		// Allow any origin for demo use; restrict in production
		return true
	},
}

// client is one browser connection with at most one running session.
type client struct {
	h       *Handler
	conn    *websocket.Conn
	writeMu sync.Mutex

	sink    *switchSink
	session atomic.Pointer[live.Session]
	src     atomic.Pointer[blockSource]
	pc      atomic.Pointer[webrtc.PeerConnection]

	stopCh   chan struct{}
	stopOnce sync.Once
}

// ServeWS upgrades the request and serves one client until the socket closes.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("gateway: ws upgrade error: %v", err)
		return
	}
	c := &client{h: h, conn: conn, stopCh: make(chan struct{})}
	c.sink = &switchSink{ws: &wsSink{c: c}}
	h.rec.ClientConnected()
	log.Printf("gateway: client connected: %s", r.RemoteAddr)
	defer func() {
		c.teardown()
		h.rec.ClientDisconnected()
		log.Printf("gateway: client disconnected: %s", r.RemoteAddr)
	}()
	c.readLoop()
}

func (c *client) readLoop() {
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		var m clientMessage
		if json.Unmarshal(data, &m) != nil {
			continue
		}
		switch strings.ToLower(m.Type) {
		case "start":
			c.handleStart()
		case "stop":
			c.handleStop()
		case "audio":
			c.handleAudio(m.Data)
		case "chat":
			go c.handleChat(m.Text)
		case "offer":
			c.handleOffer(m)
		case "candidate":
			c.handleCandidate(m)
		case "bye":
			return
		}
	}
}

func (c *client) write(msg serverMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (c *client) writeError(text string) {
	_ = c.write(serverMessage{Type: "error", Error: text})
}

func (c *client) handleStart() {
	if s := c.session.Load(); s != nil {
		st := s.State()
		if st != live.StateClosed && st != live.StateErrored {
			c.writeError(live.ErrAlreadyActive.Error())
			return
		}
	}
	src := newBlockSource()
	writer := playback.NewPacedWriter(c.sink)
	rec := transcript.NewReconciler()
	transport := live.NewLiveTransport(c.h.liveCfg)
	sess := live.NewSession(transport, src, writer, rec, live.WithRecorder(c.h.rec))
	c.src.Store(src)
	c.session.Store(sess)
	go c.pumpUpdates(sess)
	if err := sess.Start(context.Background()); err != nil {
		// the update pump reports the failure to the browser
		log.Printf("gateway: session start: %v", err)
	}
}

func (c *client) handleStop() {
	if s := c.session.Load(); s != nil {
		_ = s.Stop()
	}
}

func (c *client) handleAudio(data string) {
	src := c.src.Load()
	if src == nil {
		return
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil || len(raw)%4 != 0 {
		log.Printf("gateway: bad capture payload")
		return
	}
	src.Push(pcm.Float32FromBytes(raw))
}

func (c *client) handleChat(question string) {
	if strings.TrimSpace(question) == "" {
		return
	}
	if c.h.chat == nil {
		c.writeError("chat is not configured")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
	defer cancel()
	started := time.Now()
	reply, err := c.h.chat.Ask(ctx, question)
	if err != nil {
		log.Printf("gateway: chat error: %v", err)
		c.h.rec.RecordChatFailure()
		c.writeError("The assistant could not answer. Try again.")
		return
	}
	c.h.rec.RecordChat(reply.Route.String(), time.Since(started).Seconds())
	_ = c.write(serverMessage{Type: "chat", Text: reply.Text, Citations: reply.Citations, Route: reply.Route.String()})
}

// pumpUpdates pushes transcript and state snapshots to the browser until the
// session reaches a final state.
func (c *client) pumpUpdates(sess *live.Session) {
	lastState := live.SessionState(-1)
	hadOpen := false
	for {
		select {
		case <-c.stopCh:
			return
		case <-sess.Updates():
		}
		st := sess.State()
		if st != lastState {
			lastState = st
			_ = c.write(serverMessage{Type: "state", State: st.String()})
		}
		msgs := sess.Messages()
		allFinal := true
		for _, m := range msgs {
			if !m.Final {
				allFinal = false
				break
			}
		}
		if len(msgs) > 0 {
			_ = c.write(serverMessage{Type: "transcript", Messages: msgs})
		}
		if hadOpen && allFinal {
			_ = c.write(serverMessage{Type: "turn_complete"})
		}
		hadOpen = !allFinal
		if st == live.StateClosed || st == live.StateErrored {
			if err := sess.Err(); err != nil {
				c.writeError(live.UserMessage(err))
			}
			return
		}
	}
}

func (c *client) handleOffer(m clientMessage) {
	if m.SDP == "" {
		c.writeError("invalid offer")
		return
	}
	if old := c.pc.Load(); old != nil {
		_ = old.Close()
	}
	pc, outTrack, err := newPeerConnection()
	if err != nil {
		c.writeError(err.Error())
		return
	}
	c.pc.Store(pc)

	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand == nil {
			// signal end of candidates
			_ = c.write(serverMessage{Type: "ice-complete"})
			return
		}
		init := cand.ToJSON()
		_ = c.write(serverMessage{Type: "candidate", Candidate: init.Candidate, SDPMid: init.SDPMid, SDPMLineIndex: init.SDPMLineIndex})
	})
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Printf("gateway: peer connection state: %s", state.String())
		switch state {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateDisconnected:
			// fall back to the JSON audio plane
			c.sink.setRTC(nil)
		}
	})
	pc.OnTrack(func(remote *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if remote.Kind() != webrtc.RTPCodecTypeAudio {
			return
		}
		log.Printf("gateway: remote audio track: codec=%s", remote.Codec().MimeType)
		sink, serr := newTrackSink(outTrack)
		if serr != nil {
			log.Printf("gateway: opus encoder: %v", serr)
			return
		}
		c.sink.setRTC(sink)
		go c.pumpMic(remote)
	})

	remoteOffer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: m.SDP}
	if err := pc.SetRemoteDescription(remoteOffer); err != nil {
		c.writeError(err.Error())
		return
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		c.writeError(err.Error())
		return
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		c.writeError(err.Error())
		return
	}
	local := pc.LocalDescription()
	if local == nil {
		c.writeError("no local description")
		return
	}
	_ = c.write(serverMessage{Type: "answer", SDP: local.SDP})
}

func (c *client) handleCandidate(m clientMessage) {
	pc := c.pc.Load()
	if pc == nil || m.Candidate == "" {
		return
	}
	_ = pc.AddICECandidate(webrtc.ICECandidateInit{Candidate: m.Candidate, SDPMid: m.SDPMid, SDPMLineIndex: m.SDPMLineIndex})
}

func (c *client) teardown() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if s := c.session.Load(); s != nil {
			_ = s.Stop()
		}
		if pc := c.pc.Load(); pc != nil {
			_ = pc.Close()
		}
		_ = c.conn.Close()
	})
}
