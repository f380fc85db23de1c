package llm

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

var ErrEmptyRequest = errors.New("llm: request has no messages")

type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, modelName: modelName}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

// Generate replays the history as a chat and streams the answer for the last
// message, returning the concatenated text. A fresh model handle is built per
// call so the shared client is never mutated.
func (v *VertexGemini) Generate(ctx context.Context, req Request) (string, error) {
	msgs := MergeConsecutive(req.Messages)
	if len(msgs) == 0 {
		return "", ErrEmptyRequest
	}

	m := v.client.GenerativeModel(v.modelName)
	if req.System != "" {
		m.SystemInstruction = &vertexgenai.Content{
			Parts: []vertexgenai.Part{vertexgenai.Text(req.System)},
		}
	}

	cs := m.StartChat()
	for _, msg := range msgs[:len(msgs)-1] {
		cs.History = append(cs.History, toContent(msg))
	}
	last := msgs[len(msgs)-1]

	it := cs.SendMessageStream(ctx, vertexgenai.Text(last.Content))
	var full strings.Builder
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", err
		}

		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if t, ok := part.(vertexgenai.Text); ok {
					full.WriteString(string(t))
				}
			}
		}
	}
	return strings.TrimSpace(full.String()), nil
}

func toContent(m Message) *vertexgenai.Content {
	role := "user"
	if m.Role == RoleAssistant {
		role = "model"
	}
	return &vertexgenai.Content{
		Role:  role,
		Parts: []vertexgenai.Part{vertexgenai.Text(m.Content)},
	}
}
