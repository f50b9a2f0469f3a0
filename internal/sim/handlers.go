package sim

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

// historyEntry is one persisted message on the wire; ids use the
// document-store "_id" key
type historyEntry struct {
	ID          string             `json:"_id"`
	Role        types.Role         `json:"role"`
	Content     string             `json:"content"`
	Attachments []types.Attachment `json:"attachments"`
}

// Health handles liveness checks
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": len(s.store.List()),
	})
}

// CreateSession starts an empty conversation
func (s *Server) CreateSession(c *gin.Context) {
	summary := s.store.Create()
	s.logger.Info("Session created", zapSession(summary.SessionID), traceField(c))
	c.JSON(http.StatusOK, summary)
}

// ListSessions lists conversations, most recent first
func (s *Server) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.List())
}

// SessionMessages returns the persisted history of a session
func (s *Server) SessionMessages(c *gin.Context) {
	msgs, ok := s.store.Messages(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}

	out := make([]historyEntry, len(msgs))
	for i, m := range msgs {
		out[i] = historyEntry{ID: m.ID, Role: m.Role, Content: m.Content, Attachments: m.Attachments}
	}
	c.JSON(http.StatusOK, out)
}
