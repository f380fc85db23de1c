package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/providers/llm"
	"github.com/yoockh/fluentspeak/internal/utils"
)

func TestGenerateReplyReplaysHistory(t *testing.T) {
	p := &fakeLLM{reply: "  Nice to meet you. What do you do?  "}
	svc := NewCoachService(p, time.Second, testMetrics())

	history := []models.DialogueTurn{
		{Speaker: models.SourceUser, Text: "hello"},
		{Speaker: models.SourceBot, Text: "hi there"},
		{Speaker: models.SourceUser, Text: "I am"},
		{Speaker: models.SourceUser, Text: "Sam"},
	}
	reply, err := svc.GenerateReply(context.Background(), nil, history)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Nice to meet you. What do you do?" {
		t.Fatalf("reply = %q", reply)
	}

	msgs := p.reqs[0].Messages
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3: %+v", len(msgs), msgs)
	}
	if msgs[1].Role != llm.RoleAssistant || msgs[2].Content != "I am\nSam" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if p.reqs[0].System != CoachPrompt(nil) {
		t.Error("expected base prompt without scenario")
	}
}

func TestGenerateReplyScenarioPrompt(t *testing.T) {
	p := &fakeLLM{reply: "Welcome in."}
	svc := NewCoachService(p, time.Second, testMetrics())

	sc := &models.Scenario{Title: "Coffee shop", Description: "Order a drink from a barista."}
	if _, err := svc.GenerateReply(context.Background(), sc, []models.DialogueTurn{{Speaker: models.SourceUser, Text: "hi"}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.reqs[0].System, "Order a drink from a barista.") {
		t.Fatalf("scenario missing from prompt: %q", p.reqs[0].System)
	}
}

func TestGenerateReplyNeedsUserTurn(t *testing.T) {
	svc := NewCoachService(&fakeLLM{}, time.Second, testMetrics())

	for _, h := range [][]models.DialogueTurn{
		nil,
		{{Speaker: models.SourceUser, Text: "hi"}, {Speaker: models.SourceBot, Text: "hello"}},
	} {
		if _, err := svc.GenerateReply(context.Background(), nil, h); !utils.IsCode(err, utils.CodeInvalidArgument) {
			t.Errorf("history %+v: got %v", h, err)
		}
	}
}
