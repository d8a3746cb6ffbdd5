package models

import (
	"time"

	"github.com/alex-pricope/online-voting-system/auth"
	"github.com/alex-pricope/online-voting-system/storage"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username" binding:"required,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AssignRoleRequest struct {
	Role storage.Role `json:"role" binding:"required"`
}

type UserResponse struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Username  string       `json:"username"`
	Role      storage.Role `json:"role"`
	CreatedAt time.Time    `json:"createdAt"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

func TransformUserFromStorage(u *storage.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func TransformAuthResult(r *auth.Result) AuthResponse {
	return AuthResponse{
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt,
		User:      TransformUserFromStorage(r.User),
	}
}
