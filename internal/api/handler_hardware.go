package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-inventory-backend/internal/model"
	"smart-inventory-backend/internal/realtime"
	"smart-inventory-backend/internal/store"
)

const (
	msgHardwareRequired = "uid & value required"
	msgValueNotNumber   = "value must be a number"
)

type hardwareLogRequest struct {
	UID   flexString `json:"uid"`
	Value flexNumber `json:"value"`
}

// CreateHardwareLog handles POST /api/hardware/logs. The device key is checked
// by middleware before this runs. A stored entry is always reported as
// success; the realtime publish is best-effort.
func (h *Handler) CreateHardwareLog(c *gin.Context) {
	var req hardwareLogRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UID == "" || !req.Value.Set {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": msgHardwareRequired})
		return
	}
	if !req.Value.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": msgValueNotNumber})
		return
	}

	ctx, cancel := h.backendContext(c)
	defer cancel()

	entry, err := h.store.AppendHardwareLog(ctx, string(req.UID), req.Value.Value)
	if err != nil {
		respondError(c, "append hardware log", err, msgHardwareRequired)
		return
	}

	if h.publisher != nil {
		h.publisher.Publish(realtime.EventHardwareLog, entry)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": entry})
}

// ListHardwareLogs handles GET /api/hardware/logs?limit=N.
func (h *Handler) ListHardwareLogs(c *gin.Context) {
	ctx, cancel := h.backendContext(c)
	defer cancel()

	logs, err := h.store.ListHardwareLogs(ctx, store.ClampLimit(c.Query("limit")))
	if err != nil {
		respondError(c, "list hardware logs", err, msgHardwareRequired)
		return
	}
	if logs == nil {
		logs = []model.HardwareLog{}
	}
	c.JSON(http.StatusOK, logs)
}
