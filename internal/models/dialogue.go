package models

import (
	"strings"
	"time"
)

// DialogueTurn is one utterance held in a coach session's memory.
// ID becomes the stored message id, so a retried append of the same turn
// is a no-op.
type DialogueTurn struct {
	ID        string        `json:"id"`
	Speaker   MessageSource `json:"speaker"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
}

// SuggestionSet holds candidate next words in model output order.
// An empty set means "no suggestion".
type SuggestionSet []string

// ParseSuggestionSet splits a raw comma-separated model reply, trimming
// whitespace and discarding empty items.
func ParseSuggestionSet(raw string) SuggestionSet {
	var out SuggestionSet
	for _, w := range strings.Split(raw, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func (s SuggestionSet) Empty() bool { return len(s) == 0 }

// String is the outbound wire form.
func (s SuggestionSet) String() string { return strings.Join(s, ", ") }
