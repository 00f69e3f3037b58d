package chat

import (
	"context"
	"testing"

	"google.golang.org/genai"

	"github.com/rashmiranjanaiet/ai-web/internal/route"
)

func TestNewClient_NoKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "", ""); err == nil {
		t.Fatalf("expected error with missing key")
	}
}

func TestBuildConfig_ToolPerRoute(t *testing.T) {
	cfg := buildConfig(route.Search, "")
	if len(cfg.Tools) != 1 || cfg.Tools[0].GoogleSearch == nil {
		t.Fatalf("expected search tool, got %+v", cfg.Tools)
	}
	cfg = buildConfig(route.Maps, "")
	if len(cfg.Tools) != 1 || cfg.Tools[0].GoogleMaps == nil {
		t.Fatalf("expected maps tool, got %+v", cfg.Tools)
	}
	cfg = buildConfig(route.PlainChat, "")
	if len(cfg.Tools) != 0 {
		t.Fatalf("expected no tools for plain chat, got %+v", cfg.Tools)
	}
}

func TestBuildConfig_SystemPrompt(t *testing.T) {
	cfg := buildConfig(route.PlainChat, "be brief")
	if cfg.SystemInstruction == nil || len(cfg.SystemInstruction.Parts) != 1 {
		t.Fatalf("expected system instruction, got %+v", cfg.SystemInstruction)
	}
	if cfg.SystemInstruction.Parts[0].Text != "be brief" {
		t.Fatalf("unexpected prompt: %q", cfg.SystemInstruction.Parts[0].Text)
	}
}

func TestExtractReply_TextAndCitations(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "It opens "},
				{Text: "at nine."},
			}},
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{URI: "https://a.example", Title: "A"}},
					{Web: &genai.GroundingChunkWeb{URI: "https://a.example", Title: "A"}},
					{Web: &genai.GroundingChunkWeb{URI: "https://b.example", Domain: "b.example"}},
					{Web: &genai.GroundingChunkWeb{URI: ""}},
				},
			},
		}},
	}
	reply, err := extractReply(resp)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if reply.Text != "It opens at nine." {
		t.Fatalf("text = %q", reply.Text)
	}
	if len(reply.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %+v", reply.Citations)
	}
	if reply.Citations[0].Title != "A" || reply.Citations[0].URI != "https://a.example" {
		t.Fatalf("citation 0: %+v", reply.Citations[0])
	}
	// title falls back to the domain
	if reply.Citations[1].Title != "b.example" {
		t.Fatalf("citation 1: %+v", reply.Citations[1])
	}
}

func TestExtractReply_NoGroundingNoCitations(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content:      &genai.Content{Parts: []*genai.Part{{Text: "hi"}}},
		}},
	}
	reply, err := extractReply(resp)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(reply.Citations) != 0 {
		t.Fatalf("expected no citations, got %+v", reply.Citations)
	}
}

func TestExtractReply_Failures(t *testing.T) {
	cases := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"safety stop", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}},
		{"no content", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := extractReply(tc.resp); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
