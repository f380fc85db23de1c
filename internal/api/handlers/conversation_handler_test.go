package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/utils"
)

type fakeConversations struct {
	convs map[string]*models.Conversation
	msgs  map[string][]models.Message
}

func (f *fakeConversations) Create(_ context.Context, userID string, scenarioID *string, _ []byte) (*models.Conversation, error) {
	if scenarioID != nil && *scenarioID == "missing" {
		return nil, utils.E(utils.CodeInvalidArgument, "fake.Create", "scenario does not exist", nil)
	}
	c := &models.Conversation{ID: "c-new", UserID: userID, ScenarioID: scenarioID}
	f.convs[c.ID] = c
	return c, nil
}

func (f *fakeConversations) Get(_ context.Context, id string) (*models.Conversation, error) {
	if c, ok := f.convs[id]; ok {
		return c, nil
	}
	return nil, utils.E(utils.CodeNotFound, "fake.Get", "conversation not found", utils.ErrNotFound)
}

func (f *fakeConversations) AppendMessage(context.Context, string, string, models.MessageSource, string, time.Time) (*models.Message, error) {
	return nil, nil
}

func (f *fakeConversations) ListMessages(ctx context.Context, userID, id string, _ int) ([]models.Message, error) {
	c, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, "fake.ListMessages", "conversation belongs to another user", nil)
	}
	return f.msgs[id], nil
}

func newConversationRouter(svc *fakeConversations) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewConversationHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set("user_id", u)
		}
		c.Next()
	})
	r.POST("/conversations", h.Create)
	r.GET("/conversations/:id", h.Get)
	r.GET("/conversations/:id/messages", h.ListMessages)
	return r
}

func TestConversationHandler(t *testing.T) {
	svc := &fakeConversations{
		convs: map[string]*models.Conversation{"c1": {ID: "c1", UserID: "u1"}},
		msgs: map[string][]models.Message{"c1": {
			{ConversationID: "c1", Source: models.SourceUser, Content: "hello"},
			{ConversationID: "c1", Source: models.SourceBot, Content: "hi there"},
		}},
	}
	r := newConversationRouter(svc)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   string
		status int
		code   utils.Code
	}{
		{"create without body", http.MethodPost, "/conversations", "u1", "", http.StatusCreated, ""},
		{"create bad json", http.MethodPost, "/conversations", "u1", "{", http.StatusBadRequest, utils.CodeInvalidArgument},
		{"create unknown scenario", http.MethodPost, "/conversations", "u1", `{"scenario_id":"missing"}`, http.StatusBadRequest, utils.CodeInvalidArgument},
		{"create unauthenticated", http.MethodPost, "/conversations", "", "", http.StatusUnauthorized, utils.CodeUnauthorized},
		{"get own", http.MethodGet, "/conversations/c1", "u1", "", http.StatusOK, ""},
		{"get foreign", http.MethodGet, "/conversations/c1", "u2", "", http.StatusForbidden, utils.CodeForbidden},
		{"get missing", http.MethodGet, "/conversations/nope", "u1", "", http.StatusNotFound, utils.CodeNotFound},
		{"messages foreign", http.MethodGet, "/conversations/c1/messages", "u2", "", http.StatusForbidden, utils.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.user != "" {
				req.Header.Set("X-Test-User", tt.user)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body)
			}
			if tt.code != "" {
				var apiErr APIError
				if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil || apiErr.Code != tt.code {
					t.Fatalf("body = %s", w.Body)
				}
			}
		})
	}
}

func TestListMessagesInOrder(t *testing.T) {
	svc := &fakeConversations{
		convs: map[string]*models.Conversation{"c1": {ID: "c1", UserID: "u1"}},
		msgs: map[string][]models.Message{"c1": {
			{ConversationID: "c1", Source: models.SourceUser, Content: "hello"},
			{ConversationID: "c1", Source: models.SourceBot, Content: "hi there"},
		}},
	}
	req := httptest.NewRequest(http.MethodGet, "/conversations/c1/messages?limit=10", nil)
	req.Header.Set("X-Test-User", "u1")
	w := httptest.NewRecorder()
	newConversationRouter(svc).ServeHTTP(w, req)

	var resp struct {
		ConversationID string           `json:"conversation_id"`
		Messages       []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ConversationID != "c1" || len(resp.Messages) != 2 || resp.Messages[1].Source != models.SourceBot {
		t.Fatalf("resp = %+v", resp)
	}
}
