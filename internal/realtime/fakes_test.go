package realtime

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/fluentspeak/internal/metrics"
	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/utils"
)

const waitTimeout = 2 * time.Second

func testObservers() Observers {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return Observers{Metrics: metrics.NewMetrics(prometheus.NewRegistry()), Logger: l}
}

// fakeConn is fed by the test; disconnect makes ReadFrame fail once the
// already queued frames are drained.
type fakeConn struct {
	in      chan Frame
	once    sync.Once
	mu      sync.Mutex
	out     []string
	written chan string
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan Frame, 64), written: make(chan string, 64)}
}

func (c *fakeConn) ReadFrame() (Frame, error) {
	f, ok := <-c.in
	if !ok {
		return Frame{}, io.EOF
	}
	return f, nil
}

func (c *fakeConn) WriteText(text string) error {
	c.mu.Lock()
	c.out = append(c.out, text)
	c.mu.Unlock()
	c.written <- text
	return nil
}

func (c *fakeConn) text(s string) { c.in <- Frame{Type: TextFrame, Data: []byte(s)} }

func (c *fakeConn) binary(b []byte) { c.in <- Frame{Type: BinaryFrame, Data: b} }

func (c *fakeConn) disconnect() { c.once.Do(func() { close(c.in) }) }

func (c *fakeConn) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.out...)
}

func (c *fakeConn) awaitWrite(t *testing.T) string {
	t.Helper()
	select {
	case s := <-c.written:
		return s
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for an outbound frame")
		return ""
	}
}

// runAsync starts run and returns a channel yielding its result.
func runAsync(run func(context.Context, Conn) error, conn Conn) <-chan error {
	done := make(chan error, 1)
	go func() { done <- run(context.Background(), conn) }()
	return done
}

func awaitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("session did not finish")
		return nil
	}
}

// fakeTranscriber returns queued results in order, then falls back to
// echoing the audio bytes as text.
type fakeTranscriber struct {
	mu      sync.Mutex
	results []result
	wait    <-chan struct{}
	inputs  [][]byte
}

type result struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio []byte) (string, error) {
	if f.wait != nil {
		<-f.wait
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, append([]byte(nil), audio...))
	if len(f.results) == 0 {
		return string(audio), nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.text, r.err
}

type fakeReplier struct {
	mu        sync.Mutex
	results   []result
	histories [][]models.DialogueTurn
}

func (f *fakeReplier) GenerateReply(_ context.Context, _ *models.Scenario, history []models.DialogueTurn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories = append(f.histories, history)
	if len(f.results) == 0 {
		return "re: " + history[len(history)-1].Text, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.text, r.err
}

func (f *fakeReplier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.histories)
}

type fakeSuggester struct {
	mu     sync.Mutex
	set    models.SuggestionSet
	err    error
	inputs []string
}

func (f *fakeSuggester) Suggest(_ context.Context, transcript string) (models.SuggestionSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, transcript)
	if f.set == nil && f.err == nil {
		return models.SuggestionSet{"after " + transcript}, nil
	}
	return f.set, f.err
}

func (f *fakeSuggester) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

type appended struct {
	conversationID string
	source         models.MessageSource
	content        string
}

type fakeStore struct {
	mu       sync.Mutex
	convs    map[string]*models.Conversation
	appends  []appended
	failures int // transient failures before the next append succeeds
	failAll  bool
	lostAcks int // appends that commit but still report an error
	stored   map[string]bool
	attempts []string
}

func newFakeStore(convs ...*models.Conversation) *fakeStore {
	s := &fakeStore{convs: map[string]*models.Conversation{}}
	for _, c := range convs {
		s.convs[c.ID] = c
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, id string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, utils.E(utils.CodeNotFound, "fakeStore.Get", "conversation not found", utils.ErrNotFound)
	}
	return c, nil
}

func (s *fakeStore) AppendMessage(_ context.Context, conversationID, messageID string, source models.MessageSource, content string, sentAt time.Time) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, messageID)
	if s.failAll || s.failures > 0 {
		if s.failures > 0 {
			s.failures--
		}
		return nil, utils.E(utils.CodeInternal, "fakeStore.AppendMessage", "write failed", nil)
	}
	if _, ok := s.convs[conversationID]; !ok {
		return nil, utils.E(utils.CodeNotFound, "fakeStore.AppendMessage", "conversation not found", utils.ErrNotFound)
	}
	m := &models.Message{ID: messageID, ConversationID: conversationID, Source: source, Content: content, SentAt: sentAt}
	if s.stored[messageID] {
		return m, nil
	}
	if s.stored == nil {
		s.stored = map[string]bool{}
	}
	s.stored[messageID] = true
	s.appends = append(s.appends, appended{conversationID, source, content})
	if s.lostAcks > 0 {
		s.lostAcks--
		return nil, utils.E(utils.CodeInternal, "fakeStore.AppendMessage", "commit acknowledgement lost", nil)
	}
	return m, nil
}

func (s *fakeStore) forConversation(id string) []appended {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []appended
	for _, a := range s.appends {
		if a.conversationID == id {
			out = append(out, a)
		}
	}
	return out
}

func (s *fakeStore) attempted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.attempts...)
}

func (s *fakeStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appends)
}

type fakeAudit struct {
	mu      sync.Mutex
	started []string
	ended   map[string]string
}

func (a *fakeAudit) Start(_ context.Context, sessionID, userID string, mode models.SessionMode) (*models.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started = append(a.started, sessionID)
	return &models.Session{SessionID: sessionID, UserID: userID, Mode: mode}, nil
}

func (a *fakeAudit) End(_ context.Context, sessionID, status, _ string, _ models.SessionStats) (*models.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ended == nil {
		a.ended = map[string]string{}
	}
	a.ended[sessionID] = status
	return &models.Session{SessionID: sessionID, Status: status}, nil
}

type fakeTurns struct {
	mu   sync.Mutex
	logs []models.TurnLog
}

func (f *fakeTurns) Record(_ context.Context, t *models.TurnLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *t)
	return nil
}

type fakeArchive struct {
	mu    sync.Mutex
	turns []models.DialogueTurn
}

func (f *fakeArchive) Archive(_ context.Context, _, _ string, turns []models.DialogueTurn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = turns
	return "gs://test/archive.json", nil
}
