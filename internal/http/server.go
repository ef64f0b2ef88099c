// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voyago/internal/http/middleware"
	"voyago/internal/modules/planlog"
)

// ChatService is the dialogue surface the gateway streams from.
type ChatService interface {
	HandleTurn(ctx context.Context, conversationID, message string, now time.Time) <-chan string
}

// PlanHistory lists archived itineraries. Nil when no database is
// configured.
type PlanHistory interface {
	History(ctx context.Context, conversationID string, limit int) ([]planlog.Record, error)
}

type ServerDeps struct {
	Chat  ChatService
	Plans PlanHistory
}

type Server struct {
	chat  ChatService
	plans PlanHistory
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		chat:  deps.Chat,
		plans: deps.Plans,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.POST("/api/chat", s.HandleChat)
	r.GET("/api/plans/:conversation_id", s.HandlePlanHistory)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}
