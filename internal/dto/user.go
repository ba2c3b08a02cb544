package dto

import (
	"github.com/dablu-app/dablu_backend/internal/core/domain"
)

// LookupUsersRequest is the body of POST /users: resolve a set of user IDs
// to display names for rendering room members.
type LookupUsersRequest struct {
	UserIDs []string `json:"userIds" binding:"required"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// ToUserResponse maps a domain User to its API representation.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:   user.UserID,
		Username: user.Username,
	}
}

// ToUserResponses maps a slice of domain users, preserving order.
func ToUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}

// UpdateProfileRequest is the body of PUT /user/:userID/profile.
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
}

// ChangePasswordRequest is the body of POST /auth/change-password. The
// caller is taken from the bearer token, never from the body.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}
