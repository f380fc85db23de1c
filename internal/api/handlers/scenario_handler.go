package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/fluentspeak/internal/services"
	"github.com/yoockh/fluentspeak/internal/utils"
)

type ScenarioHandler struct {
	svc services.ScenarioService
}

func NewScenarioHandler(svc services.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{svc: svc}
}

type CreateScenarioRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (h *ScenarioHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), queryLimit(c, 100, 500))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": rows})
}

// Create is admin only; see routes.
func (h *ScenarioHandler) Create(c *gin.Context) {
	var req CreateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ScenarioHandler.Create", "invalid request body", err))
		return
	}

	sc, err := h.svc.Create(c.Request.Context(), req.Title, req.Description, req.Tags)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}
