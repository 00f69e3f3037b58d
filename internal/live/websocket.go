package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rashmiranjanaiet/ai-web/internal/wire"
)

// DEFAULT_LIVE_URL is the realtime endpoint of the generative service.
const DEFAULT_LIVE_URL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

// DEFAULT_LIVE_MODEL is the native-audio dialog model spoken over the
// realtime channel.
const DEFAULT_LIVE_MODEL = "models/gemini-2.5-flash-preview-native-audio-dialog"

// DEFAULT_VOICE is the prebuilt voice requested for synthesized speech.
const DEFAULT_VOICE = "Orus"

// HANDSHAKE_TIMEOUT bounds the WebSocket dial.
const HANDSHAKE_TIMEOUT = 10 * time.Second

// Config carries the connection parameters for the realtime channel.
type Config struct {
	URL          string
	APIKey       string
	Model        string
	SystemPrompt string
	Voice        string
}

// LiveTransport speaks the realtime JSON protocol over a WebSocket: capture
// blobs go up inside realtimeInput messages, serverContent messages come
// back and are split into typed events in field order.
type LiveTransport struct {
	cfg       Config
	conn      *websocket.Conn
	events    chan Event
	blobs     chan wire.Blob
	stopCh    chan struct{}
	mu        sync.RWMutex
	connected bool
}

var _ Transport = (*LiveTransport)(nil)

// outbound messages

type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model                    string            `json:"model"`
	GenerationConfig         *generationConfig `json:"generationConfig,omitempty"`
	SystemInstruction        *systemContent    `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *struct{}         `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}         `json:"outputAudioTranscription,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig *voiceConfig `json:"voiceConfig,omitempty"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig *prebuiltVoice `json:"prebuiltVoiceConfig,omitempty"`
}

type prebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type systemContent struct {
	Parts []textPart `json:"parts"`
}

type textPart struct {
	Text string `json:"text"`
}

type realtimeMessage struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	Media wire.Blob `json:"media"`
}

// inbound messages

type serverMessage struct {
	SetupComplete *setupComplete `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
}

type setupComplete struct{}

type serverContent struct {
	InputTranscription  *transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
	ModelTurn           *modelTurn     `json:"modelTurn,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
}

type transcription struct {
	Text string `json:"text"`
}

type modelTurn struct {
	Parts []inlinePart `json:"parts"`
}

type inlinePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// NewLiveTransport creates a disconnected transport. Missing config fields
// fall back to the package defaults.
func NewLiveTransport(cfg Config) *LiveTransport {
	if cfg.URL == "" {
		cfg.URL = DEFAULT_LIVE_URL
	}
	if cfg.Model == "" {
		cfg.Model = DEFAULT_LIVE_MODEL
	}
	if cfg.Voice == "" {
		cfg.Voice = DEFAULT_VOICE
	}
	return &LiveTransport{
		cfg:    cfg,
		events: make(chan Event, 64),
		blobs:  make(chan wire.Blob, 64),
		stopCh: make(chan struct{}),
	}
}

// Connect dials the endpoint, sends the setup message and starts the pump
// goroutines.
func (t *LiveTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.connected {
		return nil
	}
	if t.cfg.APIKey == "" {
		return fmt.Errorf("live API key is empty")
	}

	params := url.Values{}
	params.Set("key", t.cfg.APIKey)
	wsURL := t.cfg.URL + "?" + params.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: HANDSHAKE_TIMEOUT}
	log.Printf("live: connecting to %s", t.cfg.URL)

	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			log.Printf("live: connection failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to connect to live endpoint: %w", err)
	}

	setup := setupMessage{Setup: setupPayload{
		Model: t.cfg.Model,
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: &voiceConfig{
					PrebuiltVoiceConfig: &prebuiltVoice{VoiceName: t.cfg.Voice},
				},
			},
		},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
	}}
	if t.cfg.SystemPrompt != "" {
		setup.Setup.SystemInstruction = &systemContent{
			Parts: []textPart{{Text: t.cfg.SystemPrompt}},
		}
	}
	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to send setup: %w", err)
	}

	t.conn = conn
	t.connected = true

	go t.readLoop()
	go t.writeLoop()

	log.Printf("live: connected, model=%s", t.cfg.Model)
	return nil
}

// SendAudio queues one capture blob for delivery. Blocks are dropped when
// the queue is full so a stalled socket cannot back up the capture path.
func (t *LiveTransport) SendAudio(blob wire.Blob) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.connected {
		return fmt.Errorf("not connected to live endpoint")
	}
	select {
	case t.blobs <- blob:
		return nil
	default:
		log.Printf("live: audio buffer full, dropping block")
		return nil
	}
}

// Events returns the inbound event channel. The channel closes when the
// transport shuts down.
func (t *LiveTransport) Events() <-chan Event {
	return t.events
}

// Close tears the connection down. Safe to call more than once and before
// Connect.
func (t *LiveTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil
	}
	close(t.stopCh)
	if t.conn != nil {
		_ = t.conn.Close()
	}
	t.connected = false
	t.conn = nil
	log.Printf("live: connection closed")
	return nil
}

func (t *LiveTransport) writeLoop() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("live: recovered in writeLoop: %v", r)
		}
	}()
	for {
		select {
		case <-t.stopCh:
			return
		case blob := <-t.blobs:
			t.mu.RLock()
			conn := t.conn
			t.mu.RUnlock()
			if conn == nil {
				return
			}
			if err := conn.WriteJSON(realtimeMessage{RealtimeInput: realtimeInput{Media: blob}}); err != nil {
				t.emit(Event{Type: EventError, Err: fmt.Errorf("write audio: %w", err)})
				return
			}
		}
	}
}

func (t *LiveTransport) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("live: recovered in readLoop: %v", r)
		}
	}()
	defer close(t.events)
	for {
		select {
		case <-t.stopCh:
			return
		default:
		}
		t.mu.RLock()
		conn := t.conn
		t.mu.RUnlock()
		if conn == nil {
			return
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-t.stopCh:
				// closing, the read error is expected
			default:
				t.emit(Event{Type: EventError, Err: fmt.Errorf("read message: %w", err)})
			}
			return
		}
		t.processMessage(message)
	}
}

// processMessage splits one server message into events. Within a single
// message the order is transcripts, interruption, audio, turn completion;
// across messages arrival order is preserved.
func (t *LiveTransport) processMessage(message []byte) {
	var msg serverMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("live: error unmarshaling message: %v", err)
		return
	}
	if msg.SetupComplete != nil {
		log.Printf("live: setup complete")
		return
	}
	sc := msg.ServerContent
	if sc == nil {
		return
	}
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		t.emit(Event{Type: EventInputTranscript, Text: sc.InputTranscription.Text})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		t.emit(Event{Type: EventOutputTranscript, Text: sc.OutputTranscription.Text})
	}
	if sc.Interrupted {
		t.emit(Event{Type: EventInterrupted})
	}
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			raw, err := wire.DecodeBytes(part.InlineData.Data)
			if err != nil {
				log.Printf("live: error decoding audio payload: %v", err)
				continue
			}
			t.emit(Event{Type: EventAudioChunk, Audio: raw})
		}
	}
	if sc.TurnComplete {
		t.emit(Event{Type: EventTurnComplete})
	}
}

func (t *LiveTransport) emit(ev Event) {
	select {
	case t.events <- ev:
	case <-t.stopCh:
	}
}
