package live

import (
	"context"
	"encoding/base64"
	"testing"
)

func drainEvents(t *LiveTransport) []Event {
	var out []Event
	for {
		select {
		case ev := <-t.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestLiveTransport_Defaults(t *testing.T) {
	tr := NewLiveTransport(Config{APIKey: "k"})
	if tr.cfg.URL != DEFAULT_LIVE_URL {
		t.Fatalf("url = %q", tr.cfg.URL)
	}
	if tr.cfg.Model != DEFAULT_LIVE_MODEL {
		t.Fatalf("model = %q", tr.cfg.Model)
	}
	if tr.cfg.Voice != DEFAULT_VOICE {
		t.Fatalf("voice = %q", tr.cfg.Voice)
	}
}

func TestLiveTransport_ConnectRequiresKey(t *testing.T) {
	tr := NewLiveTransport(Config{})
	if err := tr.Connect(context.Background()); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestProcessMessage_InputTranscription(t *testing.T) {
	tr := NewLiveTransport(Config{APIKey: "k"})
	tr.processMessage([]byte(`{"serverContent":{"inputTranscription":{"text":"hey"}}}`))

	evs := drainEvents(tr)
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	if evs[0].Type != EventInputTranscript || evs[0].Text != "hey" {
		t.Fatalf("unexpected event: %+v", evs[0])
	}
}

func TestProcessMessage_CombinedContent(t *testing.T) {
	tr := NewLiveTransport(Config{APIKey: "k"})
	audio := base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4})
	tr.processMessage([]byte(`{"serverContent":{` +
		`"outputTranscription":{"text":"hi"},` +
		`"modelTurn":{"parts":[{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":"` + audio + `"}}]},` +
		`"turnComplete":true}}`))

	evs := drainEvents(tr)
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(evs), evs)
	}
	if evs[0].Type != EventOutputTranscript || evs[0].Text != "hi" {
		t.Fatalf("event 0: %+v", evs[0])
	}
	if evs[1].Type != EventAudioChunk || len(evs[1].Audio) != 4 || evs[1].Audio[0] != 1 {
		t.Fatalf("event 1: %+v", evs[1])
	}
	if evs[2].Type != EventTurnComplete {
		t.Fatalf("event 2: %+v", evs[2])
	}
}

func TestProcessMessage_Interrupted(t *testing.T) {
	tr := NewLiveTransport(Config{APIKey: "k"})
	tr.processMessage([]byte(`{"serverContent":{"interrupted":true}}`))

	evs := drainEvents(tr)
	if len(evs) != 1 || evs[0].Type != EventInterrupted {
		t.Fatalf("unexpected events: %+v", evs)
	}
}

func TestProcessMessage_IgnoresSetupCompleteAndUnknown(t *testing.T) {
	tr := NewLiveTransport(Config{APIKey: "k"})
	tr.processMessage([]byte(`{"setupComplete":{}}`))
	tr.processMessage([]byte(`{"usageMetadata":{"totalTokenCount":12}}`))
	tr.processMessage([]byte(`not json at all`))

	if evs := drainEvents(tr); len(evs) != 0 {
		t.Fatalf("expected no events, got %+v", evs)
	}
}

func TestProcessMessage_SkipsBadAudioPayload(t *testing.T) {
	tr := NewLiveTransport(Config{APIKey: "k"})
	tr.processMessage([]byte(`{"serverContent":{"modelTurn":{"parts":[` +
		`{"text":"thinking"},` +
		`{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":"%%%"}}]}}}`))

	if evs := drainEvents(tr); len(evs) != 0 {
		t.Fatalf("expected no events, got %+v", evs)
	}
}

func TestProcessMessage_EmptyTranscriptionText(t *testing.T) {
	tr := NewLiveTransport(Config{APIKey: "k"})
	tr.processMessage([]byte(`{"serverContent":{"inputTranscription":{"text":""}}}`))

	if evs := drainEvents(tr); len(evs) != 0 {
		t.Fatalf("expected no events, got %+v", evs)
	}
}
