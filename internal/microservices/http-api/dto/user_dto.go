package dto

import (
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/policy"
)

// CreateUserRequest is used by admins to create accounts directly.
type CreateUserRequest struct {
	Username  string      `json:"username" binding:"required,max=150,username"`
	Email     string      `json:"email" binding:"required,email,max=254"`
	FirstName string      `json:"first_name" binding:"max=150"`
	LastName  string      `json:"last_name" binding:"max=150"`
	Bio       string      `json:"bio" binding:"max=200"`
	Role      policy.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Username  *string      `json:"username" binding:"omitempty,min=1,max=150,username"`
	Email     *string      `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string      `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string      `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string      `json:"bio" binding:"omitempty,max=200"`
	Role      *policy.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

type UserResponse struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      policy.Role `json:"role"`
}

// FromModelToUserResponse converts a User model to UserResponse DTO
func FromModelToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}
