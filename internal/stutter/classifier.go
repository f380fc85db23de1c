// Package stutter decides whether a transcribed audio segment shows a speech block.
package stutter

import (
	"strings"
	"unicode"

	"github.com/yoockh/fluentspeak/internal/audio"
)

// Classifier is a lexical + acoustic heuristic. All lists are plain data and can
// be extended by callers; matching is case-insensitive.
type Classifier struct {
	// Suffixes mark a cut-off word, e.g. "I w-" or "uh--".
	Suffixes []string
	// Fillers are hesitation sounds matched against a whole token, after
	// trailing dashes are cut. A plain suffix test would flag "museum" for
	// "um" and "her" for "er"; here only "um" or "um-" match.
	Fillers []string
	// MinVowelRun is the length of a repeated trailing vowel that counts as a
	// prolongation ("aaaa", "sooo"). Zero disables the check.
	MinVowelRun int
}

// DefaultSuffixes and DefaultFillers back the Default classifier.
var (
	DefaultSuffixes = []string{"-"}
	DefaultFillers  = []string{"uh", "um", "uhm", "umm", "er", "erm", "ah", "hmm"}
)

// Default is the classifier used by realtime sessions unless one is injected.
var Default = &Classifier{
	Suffixes:    DefaultSuffixes,
	Fillers:     DefaultFillers,
	MinVowelRun: 3,
}

// IsStutter reports whether silences or the transcript tail indicate a block.
func IsStutter(silences []audio.Interval, transcript string) bool {
	return Default.IsStutter(silences, transcript)
}

func (c *Classifier) IsStutter(silences []audio.Interval, transcript string) bool {
	if len(silences) > 0 {
		return true
	}
	return c.HasDisfluentTail(transcript)
}

// HasDisfluentTail checks only the last whitespace-delimited token of transcript.
func (c *Classifier) HasDisfluentTail(transcript string) bool {
	fields := strings.Fields(transcript)
	if len(fields) == 0 {
		return false
	}
	tok := normalizeToken(fields[len(fields)-1])
	if tok == "" {
		return false
	}

	for _, s := range c.Suffixes {
		if s != "" && strings.HasSuffix(tok, s) {
			return true
		}
	}

	word := strings.TrimRight(tok, "-")
	for _, f := range c.Fillers {
		if strings.EqualFold(word, f) {
			return true
		}
	}

	return c.MinVowelRun > 0 && trailingVowelRun(word) >= c.MinVowelRun
}

// normalizeToken lowercases and strips trailing punctuation, keeping hyphens.
func normalizeToken(tok string) string {
	tok = strings.ToLower(tok)
	return strings.TrimRightFunc(tok, func(r rune) bool {
		return r != '-' && (unicode.IsPunct(r) || unicode.IsSymbol(r))
	})
}

func trailingVowelRun(word string) int {
	runes := []rune(word)
	if len(runes) == 0 {
		return 0
	}
	last := runes[len(runes)-1]
	if !isVowel(last) {
		return 0
	}
	n := 0
	for i := len(runes) - 1; i >= 0 && runes[i] == last; i-- {
		n++
	}
	return n
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
