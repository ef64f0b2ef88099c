// README: Chat handler (streams dialogue turns as server-sent events).
package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type chatReq struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// HandleChat handles POST /api/chat. The reply is streamed as SSE
// "message" events so the client renders chunks as they arrive; the
// stream ends when the turn is complete.
func (s *Server) HandleChat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	req.ConversationID = strings.TrimSpace(req.ConversationID)
	req.Message = strings.TrimSpace(req.Message)
	if req.ConversationID == "" || req.Message == "" {
		writeError(c, http.StatusBadRequest, "missing conversation_id or message")
		return
	}
	if !isValidID(req.ConversationID) {
		writeError(c, http.StatusBadRequest, "invalid conversation_id")
		return
	}

	chunks := s.chat.HandleTurn(c.Request.Context(), req.ConversationID, req.Message, time.Now())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Stream(func(_ io.Writer) bool {
		chunk, ok := <-chunks
		if !ok {
			return false
		}
		c.SSEvent("message", chunk)
		return true
	})
}

// HandlePlanHistory handles GET /api/plans/:conversation_id.
func (s *Server) HandlePlanHistory(c *gin.Context) {
	if s.plans == nil {
		writeError(c, http.StatusServiceUnavailable, "plan archive disabled")
		return
	}

	id := strings.TrimSpace(c.Param("conversation_id"))
	if id == "" || !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid conversation_id")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := s.plans.History(c.Request.Context(), id, limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"plans": records})
}
