package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dablu-app/dablu_backend/internal/core/domain"
	portssvc "github.com/dablu-app/dablu_backend/internal/core/ports/services"
	"github.com/dablu-app/dablu_backend/internal/dto"
	"github.com/dablu-app/dablu_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settlementHandler handles transfer confirmation and settlement commits.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

func newSettlementHandler(ss portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{settlementService: ss}
}

// registerSettlementRoutes registers settlement routes under /room.
func registerSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(settlementService)

	room := rg.Group("/room")
	{
		room.GET("/:roomID/calculate-settlement", h.calculateSettlement)
		room.POST("/:roomID/update-payerlist", h.updatePayerList)
		room.POST("/:roomID/mark-received", h.markReceived)
		room.POST("/settle/:roomID", h.settle)
	}
}

func (h *settlementHandler) calculateSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roomID := c.Param("roomID")

	payerList, err := h.settlementService.Calculate(c.Request.Context(), roomID)
	if err != nil {
		logger.Error("Failed to calculate settlement", slog.String("room_id", roomID), slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	if payerList == nil {
		payerList = []domain.Transfer{}
	}
	c.JSON(http.StatusOK, dto.CalculateSettlementResponse{Success: true, PayerList: payerList})
}

func (h *settlementHandler) updatePayerList(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roomID := c.Param("roomID")

	var req dto.UpdatePayerListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	room, err := h.settlementService.UpdatePayerList(c.Request.Context(), roomID, req.PayerList)
	if err != nil {
		logger.Warn("Failed to update payer list", slog.String("room_id", roomID), slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRoomResponse(room))
}

func (h *settlementHandler) markReceived(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roomID := c.Param("roomID")

	var req dto.MarkReceivedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.settlementService.MarkReceived(c.Request.Context(), roomID, req); err != nil {
		logger.Warn("Failed to mark transfer received", slog.String("room_id", roomID), slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MarkReceivedResponse{Success: true})
}

func (h *settlementHandler) settle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roomID := c.Param("roomID")

	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	room, err := h.settlementService.Settle(c.Request.Context(), roomID, req)
	if err != nil {
		logger.Warn("Settlement rejected", slog.String("room_id", roomID), slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	logger.Info("Room settled", slog.String("room_id", roomID), slog.String("settled_by", req.SettledBy))
	c.JSON(http.StatusOK, dto.ToRoomResponse(room))
}
