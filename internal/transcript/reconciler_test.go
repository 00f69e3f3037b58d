package transcript

import "testing"

func TestReconciler_MergesInputDeltas(t *testing.T) {
	r := NewReconciler()
	r.ApplyInput("Hel")
	r.ApplyInput("lo")
	r.CompleteTurn()

	msgs := r.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.Role != RoleUser || m.Text != "Hello" || !m.Final {
		t.Fatalf("unexpected message: %+v", m)
	}
	if m.ID == "" {
		t.Fatalf("expected message id")
	}
}

func TestReconciler_CompleteTurnWithoutDeltas(t *testing.T) {
	r := NewReconciler()
	r.CompleteTurn()
	r.CompleteTurn()
	if msgs := r.Messages(); len(msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(msgs))
	}
}

func TestReconciler_OutputOnlyTurnHasNoUserMessage(t *testing.T) {
	r := NewReconciler()
	r.ApplyOutput("I can ")
	r.ApplyOutput("help with that.")
	r.CompleteTurn()

	msgs := r.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Role != RoleAI || msgs[0].Text != "I can help with that." {
		t.Fatalf("unexpected message: %+v", msgs[0])
	}
}

func TestReconciler_InterleavedTurn(t *testing.T) {
	r := NewReconciler()
	r.ApplyInput("what is ")
	r.ApplyOutput("Let me ")
	r.ApplyInput("the time")
	r.ApplyOutput("check.")
	r.CompleteTurn()

	msgs := r.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Text != "what is the time" {
		t.Fatalf("user message wrong: %+v", msgs[0])
	}
	if msgs[1].Role != RoleAI || msgs[1].Text != "Let me check." {
		t.Fatalf("ai message wrong: %+v", msgs[1])
	}
	for _, m := range msgs {
		if !m.Final {
			t.Fatalf("message not finalized: %+v", m)
		}
	}
}

func TestReconciler_OpenMessageCarriesMarker(t *testing.T) {
	r := NewReconciler()
	r.ApplyInput("still talk")
	msgs := r.Messages()
	if len(msgs) != 1 || msgs[0].Final {
		t.Fatalf("expected one open message, got %+v", msgs)
	}
	r.CompleteTurn()
	if got := r.Messages()[0]; !got.Final {
		t.Fatalf("expected finalized message, got %+v", got)
	}
}

func TestReconciler_NewTurnOpensNewMessages(t *testing.T) {
	r := NewReconciler()
	r.ApplyInput("first")
	r.CompleteTurn()
	r.ApplyInput("second")
	r.CompleteTurn()

	msgs := r.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "first" || msgs[1].Text != "second" {
		t.Fatalf("unexpected texts: %q %q", msgs[0].Text, msgs[1].Text)
	}
	if msgs[0].ID == msgs[1].ID {
		t.Fatalf("expected distinct ids")
	}
}

func TestReconciler_SystemError(t *testing.T) {
	r := NewReconciler()
	r.ApplyOutput("partial")
	r.SystemError("The connection to the assistant was lost.")

	msgs := r.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	sys := msgs[1]
	if sys.Role != RoleSystem || !sys.Final {
		t.Fatalf("unexpected system message: %+v", sys)
	}
}

func TestReconciler_Reset(t *testing.T) {
	r := NewReconciler()
	r.ApplyInput("hi")
	r.CompleteTurn()
	r.Reset()
	if msgs := r.Messages(); len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d", len(msgs))
	}
	r.ApplyInput("again")
	if msgs := r.Messages(); len(msgs) != 1 || msgs[0].Text != "again" {
		t.Fatalf("reconciler unusable after reset: %+v", msgs)
	}
}
