// Package chat answers typed questions through the generative service,
// grounding them with search or maps results when the question asks for it.
package chat

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/rashmiranjanaiet/ai-web/internal/route"
)

// DefaultModel serves the request/response text path.
const DefaultModel = "gemini-2.5-flash"

// Citation points at a grounding source backing part of a reply.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Reply is one grounded answer.
type Reply struct {
	Text      string      `json:"text"`
	Citations []Citation  `json:"citations,omitempty"`
	Route     route.Route `json:"-"`
}

// Client calls the generative service for text chat.
type Client struct {
	gc           *genai.Client
	model        string
	systemPrompt string
}

func NewClient(ctx context.Context, apiKey, model, systemPrompt string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("chat API key is empty")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{gc: gc, model: model, systemPrompt: systemPrompt}, nil
}

// Ask classifies the question, attaches the matching grounding tool and
// returns the reply with any source citations.
func (c *Client) Ask(ctx context.Context, question string) (*Reply, error) {
	return c.Generate(ctx, question, route.Classify(question))
}

// Generate answers the question grounded for an already-chosen route.
func (c *Client) Generate(ctx context.Context, question string, r route.Route) (*Reply, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(question)},
	}}
	resp, err := c.gc.Models.GenerateContent(ctx, c.model, contents, buildConfig(r, c.systemPrompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	reply, err := extractReply(resp)
	if err != nil {
		return nil, err
	}
	reply.Route = r
	return reply, nil
}

// buildConfig picks the grounding tool for the route. Plain chat runs with
// no tools at all.
func buildConfig(r route.Route, systemPrompt string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(systemPrompt)},
		}
	}
	switch r {
	case route.Search:
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	case route.Maps:
		cfg.Tools = []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}}
	}
	return cfg
}

// extractReply flattens the first candidate into text plus deduplicated
// citations. A reply without grounding simply has no citations.
func extractReply(resp *genai.GenerateContentResponse) (*Reply, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}
	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case genai.FinishReasonStop, genai.FinishReasonUnspecified, "":
	default:
		return nil, fmt.Errorf("generation stopped: %s", cand.FinishReason)
	}
	if cand.Content == nil {
		return nil, fmt.Errorf("candidate has no content")
	}
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil && p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	reply := &Reply{Text: sb.String()}
	if gm := cand.GroundingMetadata; gm != nil {
		seen := map[string]struct{}{}
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			if _, ok := seen[chunk.Web.URI]; ok {
				continue
			}
			seen[chunk.Web.URI] = struct{}{}
			title := chunk.Web.Title
			if title == "" {
				title = chunk.Web.Domain
			}
			reply.Citations = append(reply.Citations, Citation{Title: title, URI: chunk.Web.URI})
		}
	}
	return reply, nil
}
