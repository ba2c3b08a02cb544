package repositories

import (
	"context"

	"github.com/dablu-app/dablu_backend/internal/core/domain"
)

// RoomReader defines read operations for room data
type RoomReader interface {
	// FindRoomByID retrieves a room with its ledger, payer list and history.
	FindRoomByID(ctx context.Context, roomID string) (*domain.Room, error)

	// FindRoomsByUserID retrieves all rooms the user is a member of.
	FindRoomsByUserID(ctx context.Context, userID string) ([]domain.Room, error)
}

// RoomWriter defines write operations for room data
type RoomWriter interface {
	// SaveRoom persists a new room.
	SaveRoom(ctx context.Context, room domain.Room) error

	// MutateRoom loads the room under a row lock, applies fn to it and
	// persists the result in the same transaction. fn returning an error
	// aborts the transaction and the error is passed through unwrapped.
	MutateRoom(ctx context.Context, roomID string, fn func(*domain.Room) error) (*domain.Room, error)

	// DeleteRoom removes a room permanently.
	DeleteRoom(ctx context.Context, roomID string) error
}

// RoomSettler serializes settlement commits.
type RoomSettler interface {
	// SettleRoom behaves like MutateRoom but additionally takes a per-room
	// advisory lock without waiting. When another settlement already holds
	// the lock it fails with a SETTLEMENT_IN_PROGRESS conflict instead of
	// blocking.
	SettleRoom(ctx context.Context, roomID string, fn func(*domain.Room) error) (*domain.Room, error)
}

// RoomRepositoryFacade combines all room-related repository interfaces
type RoomRepositoryFacade interface {
	RoomReader
	RoomWriter
	RoomSettler
}
