package services

import (
	"context"

	"github.com/dablu-app/dablu_backend/internal/core/domain"
	"github.com/dablu-app/dablu_backend/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUsersByIDs resolves a set of user IDs to users, preserving order.
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// RegisterUser creates a local-password user.
	RegisterUser(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)

	// FindOrCreateGoogleUser returns the user for a verified Google
	// identity, creating one on first sign-in.
	FindOrCreateGoogleUser(ctx context.Context, email, name string) (*domain.User, error)

	// UpdateUsername renames the user and returns the updated record.
	UpdateUsername(ctx context.Context, userID string, username string) (*domain.User, error)
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with email and password.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)

	// ChangePassword verifies the current password and replaces it.
	// Users created through an external provider have no password to
	// change.
	ChangePassword(ctx context.Context, userID string, currentPassword, newPassword string) error
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAuthSvc
}
