package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/fluentspeak/internal/services"
	"github.com/yoockh/fluentspeak/internal/utils"
)

type ConversationHandler struct {
	svc services.ConversationService
}

func NewConversationHandler(svc services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type CreateConversationRequest struct {
	ScenarioID *string         `json:"scenario_id"`
	Metadata   json.RawMessage `json:"metadata"`
}

func (h *ConversationHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateConversationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "ConversationHandler.Create", "invalid request body", err))
			return
		}
	}

	conv, err := h.svc.Create(c.Request.Context(), userID, req.ScenarioID, req.Metadata)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conv)
}

func (h *ConversationHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conv, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if conv.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "ConversationHandler.Get", "forbidden", nil))
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conversationID := c.Param("id")
	rows, err := h.svc.ListMessages(c.Request.Context(), userID, conversationID, queryLimit(c, 200, 1000))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"messages":        rows,
	})
}
