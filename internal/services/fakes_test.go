package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yoockh/fluentspeak/internal/metrics"
	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/providers/llm"
	"github.com/yoockh/fluentspeak/internal/storage"
	"github.com/yoockh/fluentspeak/internal/utils"
)

func testMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

type fakeLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	block bool
	reqs  []llm.Request
}

func (f *fakeLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type fakeSTT struct {
	text     string
	err      error
	language string
	calls    int
}

func (f *fakeSTT) Transcribe(_ context.Context, _ []byte, language string) (string, float64, error) {
	f.calls++
	f.language = language
	return f.text, 0.9, f.err
}

func (f *fakeSTT) Close() error { return nil }

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

type fakeConversationRepo struct {
	convs    map[string]*models.Conversation
	messages []models.Message
	failNext error
	// lostAck commits the next append and then returns this error.
	lostAck error
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: map[string]*models.Conversation{}}
}

func (r *fakeConversationRepo) Create(_ context.Context, c *models.Conversation) error {
	r.convs[c.ID] = c
	return nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id string) (*models.Conversation, error) {
	c, ok := r.convs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return c, nil
}

func (r *fakeConversationRepo) AppendMessage(_ context.Context, m *models.Message) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	if _, ok := r.convs[m.ConversationID]; !ok {
		return utils.ErrNotFound
	}
	for _, old := range r.messages {
		if old.ID == m.ID {
			return nil
		}
	}
	r.messages = append(r.messages, *m)
	if r.lostAck != nil {
		err := r.lostAck
		r.lostAck = nil
		return err
	}
	return nil
}

func (r *fakeConversationRepo) ListMessages(_ context.Context, conversationID string, _ int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeScenarioRepo struct {
	rows map[string]*models.Scenario
}

func (r *fakeScenarioRepo) Create(_ context.Context, s *models.Scenario) error {
	if r.rows == nil {
		r.rows = map[string]*models.Scenario{}
	}
	r.rows[s.ID] = s
	return nil
}

func (r *fakeScenarioRepo) GetByID(_ context.Context, id string) (*models.Scenario, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return s, nil
}

func (r *fakeScenarioRepo) List(_ context.Context, _ int) ([]models.Scenario, error) {
	var out []models.Scenario
	for _, s := range r.rows {
		out = append(out, *s)
	}
	return out, nil
}

type fakeUploader struct {
	obj  storage.Object
	body []byte
	err  error
}

func (u *fakeUploader) Upload(_ context.Context, obj storage.Object, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	u.obj, u.body = obj, buf.Bytes()
	return "gs://bucket/" + obj.Name, nil
}
