package llm

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is one generation call: fixed instructions plus the dialogue so far.
// The last message is expected to come from the user.
type Request struct {
	System   string
	Messages []Message
}

type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}

// MergeConsecutive folds adjacent messages with the same role into one, so
// providers that require strict user/assistant alternation accept the history.
func MergeConsecutive(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content += "\n" + m.Content
			continue
		}
		out = append(out, m)
	}
	return out
}
