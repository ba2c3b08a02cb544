package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/dablu-app/dablu_backend/internal/core/ports/services"
	"github.com/dablu-app/dablu_backend/internal/dto"
	"github.com/dablu-app/dablu_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// roomHandler handles HTTP requests for room lifecycle and expenses.
type roomHandler struct {
	roomService portssvc.RoomSvcFacade
}

func newRoomHandler(rs portssvc.RoomSvcFacade) *roomHandler {
	return &roomHandler{roomService: rs}
}

// registerRoomRoutes registers room lifecycle and expense routes.
func registerRoomRoutes(rg *gin.RouterGroup, roomService portssvc.RoomSvcFacade) {
	h := newRoomHandler(roomService)

	rooms := rg.Group("/rooms")
	{
		rooms.POST("", h.createRoom)
		rooms.POST("/:roomID/join", h.joinRoom)
		rooms.POST("/:roomID/expense", h.addExpense)
		rooms.GET("/user/:userID", h.listRoomsForUser)
	}

	room := rg.Group("/room")
	{
		room.GET("/:roomID", h.getRoom)
		room.DELETE("/:roomID", h.deleteRoom)
	}
}

func (h *roomHandler) createRoom(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), req)
	if err != nil {
		logger.Error("Failed to create room", slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	logger.Info("Room created", slog.String("room_id", room.RoomID))
	c.JSON(http.StatusCreated, dto.ToRoomResponse(room))
}

func (h *roomHandler) joinRoom(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roomID := c.Param("roomID")

	var req dto.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	room, err := h.roomService.JoinRoom(c.Request.Context(), roomID, req.UserID)
	if err != nil {
		logger.Warn("Failed to join room", slog.String("room_id", roomID), slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRoomResponse(room))
}

func (h *roomHandler) getRoom(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roomID := c.Param("roomID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	room, err := h.roomService.GetRoomByID(c.Request.Context(), roomID, userID)
	if err != nil {
		logger.Warn("Failed to get room", slog.String("room_id", roomID), slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRoomResponse(room))
}

func (h *roomHandler) listRoomsForUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	rooms, err := h.roomService.ListRoomsForUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list rooms", slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	resp := dto.ListRoomsResponse{Rooms: make([]dto.RoomResponse, 0, len(rooms))}
	for i := range rooms {
		resp.Rooms = append(resp.Rooms, dto.ToRoomResponse(&rooms[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *roomHandler) addExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roomID := c.Param("roomID")

	var req dto.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	room, err := h.roomService.AddExpense(c.Request.Context(), roomID, req)
	if err != nil {
		logger.Warn("Failed to add expense", slog.String("room_id", roomID), slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRoomResponse(room))
}

func (h *roomHandler) deleteRoom(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roomID := c.Param("roomID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.roomService.DeleteRoom(c.Request.Context(), roomID, userID); err != nil {
		logger.Warn("Failed to delete room", slog.String("room_id", roomID), slog.String("error", err.Error()))
		respondWithError(c, err)
		return
	}

	logger.Info("Room deleted", slog.String("room_id", roomID))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
