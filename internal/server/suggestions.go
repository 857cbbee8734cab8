package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type suggestionRequest struct {
	Input *string `json:"input"`
}

func (s *Server) handleSuggestionsInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Task suggestions API endpoint",
		"usage":   "POST with { input: string } to generate task suggestions",
	})
}

func (s *Server) handleSuggestions(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Input == nil || strings.TrimSpace(*req.Input) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is required and must be a string"})
		return
	}

	if s.opts.Delay > 0 {
		timer := time.NewTimer(s.opts.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-c.Request.Context().Done():
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"suggestions": s.suggest.Generate(*req.Input),
		"input":       *req.Input,
	})
}
