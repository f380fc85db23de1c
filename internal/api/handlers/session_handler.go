package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/fluentspeak/internal/services"
	"github.com/yoockh/fluentspeak/internal/utils"
)

// SessionHandler exposes the realtime session audit trail.
type SessionHandler struct {
	svc services.SessionService
}

func NewSessionHandler(svc services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	// basic authorization
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "SessionHandler.Get", "forbidden", nil))
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) ListByConversation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conversationID := c.Param("id")
	rows, err := h.svc.ListByConversation(c.Request.Context(), userID, conversationID, int64(queryLimit(c, 50, 200)))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"sessions":        rows,
	})
}
