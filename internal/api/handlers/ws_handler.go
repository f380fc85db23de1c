package handlers

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yoockh/fluentspeak/internal/realtime"
	"github.com/yoockh/fluentspeak/internal/utils"
)

const (
	wsWriteWait   = 10 * time.Second
	wsIdleTimeout = 2 * time.Minute
	wsMaxFrame    = 1 << 20
)

type WSHandler struct {
	base     context.Context
	upgrader websocket.Upgrader
	active   sync.WaitGroup

	assistantCfg  realtime.SuggestionConfig
	assistantDeps realtime.SuggestionDeps
	coachCfg      realtime.CoachConfig
	coachDeps     realtime.CoachDeps
	obs           realtime.Observers
}

type WSOptions struct {
	// Base outlives individual requests; cancelling it ends every session.
	Base          context.Context
	Assistant     realtime.SuggestionConfig
	AssistantDeps realtime.SuggestionDeps
	Coach         realtime.CoachConfig
	CoachDeps     realtime.CoachDeps
	Observers     realtime.Observers

	// AllowedOrigins is matched against the Origin header; empty allows all.
	AllowedOrigins []string
}

func NewWSHandler(o WSOptions) *WSHandler {
	if o.Base == nil {
		o.Base = context.Background()
	}
	return &WSHandler{
		base: o.Base,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(o.AllowedOrigins),
		},
		assistantCfg:  o.Assistant,
		assistantDeps: o.AssistantDeps,
		coachCfg:      o.Coach,
		coachDeps:     o.CoachDeps,
		obs:           o.Observers,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// non-browser clients send no Origin
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// wsConn adapts a gorilla connection to realtime.Conn.
type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func newWSConn(c *websocket.Conn) *wsConn {
	c.SetReadLimit(wsMaxFrame)
	_ = c.SetReadDeadline(time.Now().Add(wsIdleTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(wsIdleTimeout))
	})
	return &wsConn{c: c}
}

func (w *wsConn) ReadFrame() (realtime.Frame, error) {
	for {
		mt, data, err := w.c.ReadMessage()
		if err != nil {
			return realtime.Frame{}, errors.Join(realtime.ErrConnClosed, err)
		}
		_ = w.c.SetReadDeadline(time.Now().Add(wsIdleTimeout))

		switch mt {
		case websocket.TextMessage:
			return realtime.Frame{Type: realtime.TextFrame, Data: data}, nil
		case websocket.BinaryMessage:
			return realtime.Frame{Type: realtime.BinaryFrame, Data: data}, nil
		}
	}
}

func (w *wsConn) WriteText(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.c.WriteMessage(websocket.TextMessage, []byte(text))
}

func (w *wsConn) close(code int, reason string) {
	w.mu.Lock()
	_ = w.c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(wsWriteWait))
	w.mu.Unlock()
	_ = w.c.Close()
}

// AssistantWS streams next-word suggestions for raw PCM audio.
func (h *WSHandler) AssistantWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	wc := newWSConn(conn)
	h.active.Add(1)
	defer h.active.Done()

	sess := realtime.NewSuggestionSession(userID, h.assistantCfg, h.assistantDeps, h.obs)
	_ = sess.Run(h.base, wc)
	wc.close(websocket.CloseNormalClosure, "")
}

// CoachWS holds a spoken conversation bound to an existing conversation id.
func (h *WSHandler) CoachWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	wc := newWSConn(conn)
	h.active.Add(1)
	defer h.active.Done()

	sess := realtime.NewCoachSession(userID, h.coachCfg, h.coachDeps, h.obs)
	err = sess.Run(h.base, wc)
	code, reason := closeCode(err)
	wc.close(code, reason)
}

// Drain waits for open sessions to finish. Cancel the base context first so
// they stop reading and persist.
func (h *WSHandler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func closeCode(err error) (int, string) {
	if err == nil {
		return websocket.CloseNormalClosure, ""
	}
	reason := "internal error"
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		reason = ae.Message
	}
	if errors.Is(err, realtime.ErrMalformedControlMessage) {
		return websocket.ClosePolicyViolation, reason
	}
	if utils.IsCode(err, utils.CodeUnavailable) {
		return websocket.CloseTryAgainLater, reason
	}
	return websocket.CloseInternalServerErr, reason
}
