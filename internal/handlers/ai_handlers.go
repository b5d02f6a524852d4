package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- AI Assistant (admin back-office) ---
//

const defaultAIModel = "gemini-2.0-flash"

type ChatAIInput struct {
	Message string `json:"message" binding:"required"`
	Model   string `json:"model"`
}

// ChatAI is the handler for POST /v1/admin/ai/chat
// The assistant answers store questions by running read-only SQL
// against the replica connection. Admin-only; the route group enforces
// that.
func (h *Handlers) ChatAI(c *gin.Context) {
	if h.AIService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}

	var input ChatAIInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := input.Model
	if model == "" {
		model = defaultAIModel
	}

	answer, queriesRun, err := h.AIService.GenerateResponse(c, input.Message, model)
	if err != nil {
		log.Printf("AI chat error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "The assistant could not answer that"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":     answer,
		"queriesRun": queriesRun,
	})
}
