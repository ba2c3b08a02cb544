package dto

import (
	"github.com/dablu-app/dablu_backend/internal/core/domain"
)

// CreateRoomRequest is the body of POST /rooms.
type CreateRoomRequest struct {
	AdminID  string `json:"adminId" binding:"required"`
	RoomName string `json:"roomName" binding:"required"`
}

// JoinRoomRequest is the body of POST /rooms/:roomID/join.
type JoinRoomRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// DeleteRoomRequest is the body of DELETE /room/:roomID.
type DeleteRoomRequest struct {
	AdminID string `json:"adminId" binding:"required"`
}

// RoomResponse is the room snapshot returned by GET /room/:roomID. The
// field layout matches what the web client caches and diffs.
type RoomResponse struct {
	RoomID        string                `json:"roomId"`
	RoomName      string                `json:"roomName"`
	AdminID       string                `json:"adminId"`
	Users         []string              `json:"users"`
	Bill          domain.Ledger         `json:"bill"`
	PayerList     []domain.Transfer     `json:"payerList"`
	History       []domain.HistoryEntry `json:"history"`
	LastSettledAt *string               `json:"lastSettledAt,omitempty"`
}

// ToRoomResponse maps a domain Room to its API representation.
func ToRoomResponse(room *domain.Room) RoomResponse {
	resp := RoomResponse{
		RoomID:    room.RoomID,
		RoomName:  room.RoomName,
		AdminID:   room.AdminID,
		Users:     room.Users,
		Bill:      room.Bill,
		PayerList: room.PayerList,
		History:   room.History,
	}
	if resp.PayerList == nil {
		resp.PayerList = []domain.Transfer{}
	}
	if resp.History == nil {
		resp.History = []domain.HistoryEntry{}
	}
	if room.LastSettledAt != nil {
		s := room.LastSettledAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.LastSettledAt = &s
	}
	return resp
}

// ListRoomsResponse is the body of GET /rooms/user/:userID.
type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}
