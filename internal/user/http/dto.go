package http

import (
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserTag is a brief representation of a user.
type UserTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// CreateUserRequest defines the payload for POST /users.
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,notblank,max=255"`
	Email string `json:"email" binding:"required,email,max=512"`
}

// UpdateUserRequest defines fields allowed to be updated via PATCH /users/:id.
// Use pointers to distinguish between "field not sent" and "field sent as empty".
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=255"`
	Email *string `json:"email" binding:"omitempty,email,max=512"`
}

// TokenResponse returns a signed access token for the acting user.
type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}
