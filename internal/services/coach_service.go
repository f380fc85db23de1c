package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yoockh/fluentspeak/internal/metrics"
	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/providers/llm"
	"github.com/yoockh/fluentspeak/internal/utils"
)

const coachPrompt = `### Role:
You are a patient, friendly **conversation partner** for a person who stutters and wants to practise speaking.

### Objective:
1. Keep the conversation going naturally with short spoken-style replies of one to three sentences.
2. Respond to what the user actually said, even if the transcript contains repetitions, fillers or cut-off words.
3. End most replies with an open question so the user has something to answer.

### Important Guidelines:
- Never comment on or correct the user's disfluency.
- Never finish the user's sentences for them.
- Do not use lists, markdown or emoji; your reply will be read aloud.`

type CoachService interface {
	// GenerateReply answers the last user turn given the whole dialogue so far.
	// scenario may be nil.
	GenerateReply(ctx context.Context, scenario *models.Scenario, history []models.DialogueTurn) (string, error)
}

type coachService struct {
	provider llm.Provider
	timeout  time.Duration
	metrics  *metrics.Metrics
}

func NewCoachService(p llm.Provider, timeout time.Duration, m *metrics.Metrics) CoachService {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &coachService{provider: p, timeout: timeout, metrics: m}
}

func (s *coachService) GenerateReply(ctx context.Context, scenario *models.Scenario, history []models.DialogueTurn) (string, error) {
	const op = "CoachService.GenerateReply"

	msgs := llm.MergeConsecutive(toLLMMessages(history))
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != llm.RoleUser {
		return "", utils.E(utils.CodeInvalidArgument, op, "history must end with a user turn", nil)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.provider.Generate(ctx, llm.Request{
		System:   CoachPrompt(scenario),
		Messages: msgs,
	})
	s.metrics.RecordExternalCall(metrics.PortReply, err, time.Since(start))
	if err != nil {
		return "", utils.External(op, "reply generation failed", err)
	}
	return strings.TrimSpace(reply), nil
}

// CoachPrompt returns the system prompt for a coach session, with the
// scenario's setting appended when there is one.
func CoachPrompt(scenario *models.Scenario) string {
	if scenario == nil || (scenario.Title == "" && scenario.Description == "") {
		return coachPrompt
	}
	return fmt.Sprintf("%s\n\n### Scenario:\n%s\n%s\nStay in this scenario and play the other person in it.",
		coachPrompt, scenario.Title, scenario.Description)
}

func toLLMMessages(history []models.DialogueTurn) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, t := range history {
		role := llm.RoleUser
		if t.Speaker == models.SourceBot {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: t.Text})
	}
	return out
}
