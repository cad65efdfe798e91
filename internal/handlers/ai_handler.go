package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	// 1. The key comes from config; without it the assistant is off
	if h.geminiKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured (GEMINI_API_KEY)"})
		return
	}

	// 2. Run the AI Agent
	response, err := h.agent(c.Request.Context(), req.Message, h.geminiKey, h.repo, h.now())
	if err != nil {
		h.log.Error("assistant failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant is unavailable, please try again"})
		return
	}

	// 3. Return the Answer
	c.JSON(http.StatusOK, gin.H{"reply": response})
}
