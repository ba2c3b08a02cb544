package services

import (
	"context"

	"github.com/dablu-app/dablu_backend/internal/core/domain"
	"github.com/dablu-app/dablu_backend/internal/dto"
)

// RoomReaderSvc defines read operations for room data
type RoomReaderSvc interface {
	// GetRoomByID retrieves a room snapshot; the requesting user must be a member.
	GetRoomByID(ctx context.Context, roomID string, requestingUserID string) (*domain.Room, error)

	// ListRoomsForUser retrieves all rooms the user belongs to.
	ListRoomsForUser(ctx context.Context, userID string) ([]domain.Room, error)
}

// RoomWriterSvc defines write operations for room data
type RoomWriterSvc interface {
	// CreateRoom creates a room with the creator as admin and sole member.
	CreateRoom(ctx context.Context, req dto.CreateRoomRequest) (*domain.Room, error)

	// JoinRoom adds a user to the room, growing the ledger. Joining a room
	// the user already belongs to is a no-op.
	JoinRoom(ctx context.Context, roomID string, userID string) (*domain.Room, error)

	// AddExpense validates and applies an expense to the room ledger,
	// appends the history entry and regenerates the transfer list.
	AddExpense(ctx context.Context, roomID string, req dto.AddExpenseRequest) (*domain.Room, error)

	// DeleteRoom removes a room. Admin only, and only when no debt remains.
	DeleteRoom(ctx context.Context, roomID string, requestingUserID string) error
}

// RoomSvcFacade combines all room-related service interfaces
type RoomSvcFacade interface {
	RoomReaderSvc
	RoomWriterSvc
}
