package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/yoockh/fluentspeak/internal/cache"
	"github.com/yoockh/fluentspeak/internal/metrics"
	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/providers/llm"
	"github.com/yoockh/fluentspeak/internal/utils"
)

const suggestionPrompt = `### Role:
You are a helpful and intelligent **speech assistant** designed to help users continue speaking fluently during real-time conversations.

### Objective:
1. Analyze the provided transcript to detect signs of speech disfluency, such as stuttering, hesitations, or abrupt pauses, typically indicated by dashes (e.g., 'uh---'), repetitions, filler words or aberrations in text.
2. Use the full context of the transcript to suggest 1-4 appropriate next words that the speaker might naturally say next.
3. Respond only with a list of 1 to 4 contextually relevant and grammatically appropriate next words.

### Example:
**Transcript:**
Yes, I went to that party yesterday. I uh--

**Next word suggestions:**
enjoyed, liked, hated, remembered

### Output Format:
Comma-separated list of 1 to 4 words. Do not include quotes, numbers, or explanations.

### Important Guidelines:
- Never suggest profanities, slang, or inappropriate content.
- Always consider the intent and tone of the sentence.
- Your suggestions should be helpful and aligned with what the user is likely trying to say.`

const suggestionCacheTTL = 10 * time.Minute

type SuggestionService interface {
	Suggest(ctx context.Context, transcript string) (models.SuggestionSet, error)
}

type suggestionService struct {
	provider llm.Provider
	cache    cache.Cache // optional
	timeout  time.Duration
	metrics  *metrics.Metrics
}

func NewSuggestionService(p llm.Provider, c cache.Cache, timeout time.Duration, m *metrics.Metrics) SuggestionService {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &suggestionService{provider: p, cache: c, timeout: timeout, metrics: m}
}

func (s *suggestionService) Suggest(ctx context.Context, transcript string) (models.SuggestionSet, error) {
	const op = "SuggestionService.Suggest"

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		// a silence block with nothing said gives the model no context
		return nil, nil
	}

	key := suggestionCacheKey(transcript)
	if s.cache != nil {
		var cached models.SuggestionSet
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.provider.Generate(ctx, llm.Request{
		System:   suggestionPrompt,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: transcript}},
	})
	s.metrics.RecordExternalCall(metrics.PortSuggest, err, time.Since(start))
	if err != nil {
		return nil, utils.External(op, "suggestion generation failed", err)
	}

	set := models.ParseSuggestionSet(raw)
	if s.cache != nil && !set.Empty() {
		_ = s.cache.SetJSON(ctx, key, set, suggestionCacheTTL)
	}
	return set, nil
}

func suggestionCacheKey(transcript string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.Join(strings.Fields(transcript), " "))))
	return "suggest:" + hex.EncodeToString(sum[:])
}
