package services_test

import (
	"context"

	"github.com/dablu-app/dablu_backend/internal/core/domain"
	portsrepo "github.com/dablu-app/dablu_backend/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock RoomRepository ---
//
// MutateRoom and SettleRoom run the callback against the room held in the
// mock so service logic is actually exercised; the recorded expectation only
// controls whether the repository itself fails (e.g. a held advisory lock).
type MockRoomRepository struct {
	mock.Mock
	room *domain.Room
}

var _ portsrepo.RoomRepositoryFacade = (*MockRoomRepository)(nil)

func (m *MockRoomRepository) FindRoomByID(ctx context.Context, roomID string) (*domain.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomRepository) FindRoomsByUserID(ctx context.Context, userID string) ([]domain.Room, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockRoomRepository) SaveRoom(ctx context.Context, room domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepository) MutateRoom(ctx context.Context, roomID string, fn func(*domain.Room) error) (*domain.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Error(0) != nil {
		return nil, args.Error(0)
	}
	if err := fn(m.room); err != nil {
		return nil, err
	}
	return m.room, nil
}

func (m *MockRoomRepository) SettleRoom(ctx context.Context, roomID string, fn func(*domain.Room) error) (*domain.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Error(0) != nil {
		return nil, args.Error(0)
	}
	if err := fn(m.room); err != nil {
		return nil, err
	}
	return m.room, nil
}

func (m *MockRoomRepository) DeleteRoom(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsersByIDs(ctx context.Context, userIDs []string) ([]domain.User, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
