package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-inventory-backend/internal/model"
	"smart-inventory-backend/internal/store"
)

type addStockRequest struct {
	UID      string     `json:"uid"`
	LotCode  string     `json:"ma_lo"`
	Name     string     `json:"ten"`
	Quantity flexNumber `json:"so_luong"`
	Actor    string     `json:"nguoi"`
}

type issueStockRequest struct {
	UID   string     `json:"uid"`
	Qty   flexNumber `json:"qty"`
	Actor string     `json:"nguoi"`
}

func missingData(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": msgMissingData})
}

// AddStock handles POST /api/add (stock-in).
func (h *Handler) AddStock(c *gin.Context) {
	var req addStockRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Quantity.Valid {
		missingData(c)
		return
	}

	ctx, cancel := h.backendContext(c)
	defer cancel()

	err := h.store.RecordLot(ctx, store.RecordLotParams{
		UID:        req.UID,
		LotCode:    req.LotCode,
		Name:       req.Name,
		Quantity:   req.Quantity.Value,
		ReceivedBy: req.Actor,
	})
	if err != nil {
		respondError(c, "stock-in", err, msgMissingData)
		return
	}

	log.Printf("stock-in uid=%s lot=%s qty=%g", req.UID, req.LotCode, req.Quantity.Value)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// IssueStock handles POST /api/out (stock-out).
func (h *Handler) IssueStock(c *gin.Context) {
	var req issueStockRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Qty.Valid {
		missingData(c)
		return
	}

	ctx, cancel := h.backendContext(c)
	defer cancel()

	remain, err := h.store.AdjustLotQuantity(ctx, req.UID, req.Qty.Value, req.Actor)
	if err != nil {
		respondError(c, "stock-out", err, msgMissingData)
		return
	}

	log.Printf("stock-out uid=%s qty=%g remain=%g", req.UID, req.Qty.Value, remain)
	c.JSON(http.StatusOK, gin.H{"ok": true, "remain": remain})
}

// ListStock handles GET /api/stock.
func (h *Handler) ListStock(c *gin.Context) {
	ctx, cancel := h.backendContext(c)
	defer cancel()

	lots, err := h.store.ListLots(ctx)
	if err != nil {
		respondError(c, "list stock", err, msgMissingData)
		return
	}
	if lots == nil {
		lots = []model.Lot{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": lots})
}
