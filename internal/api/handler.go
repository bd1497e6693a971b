package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smart-inventory-backend/internal/store"
)

const (
	msgMissingData = "Thiếu dữ liệu"
	msgUIDNotFound = "Không tìm thấy UID"
	msgServerError = "server error"
)

// Publisher delivers realtime events to connected viewers.
type Publisher interface {
	Publish(event string, payload any)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	publisher Publisher
	timeout   time.Duration
}

// NewHandler creates a new API handler. Every store call is bounded by timeout.
func NewHandler(s store.Store, p Publisher, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Handler{
		store:     s,
		publisher: p,
		timeout:   timeout,
	}
}

func (h *Handler) backendContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// respondError maps store errors onto status codes. Details of unexpected
// failures are logged and never sent to the client.
func respondError(c *gin.Context, op string, err error, invalidMsg string) {
	switch {
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": invalidMsg})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": msgUIDNotFound})
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("%s: backend call timed out: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": msgServerError})
	default:
		log.Printf("%s: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": msgServerError})
	}
}
