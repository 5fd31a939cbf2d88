package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role names returned by the authenticate_user function.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SessionUser is the signed-in dashboard user.
type SessionUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

// LoginRequest holds dashboard credentials.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,simpleemail"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AuthResult is the authenticate_user RPC response.
type AuthResult struct {
	Success  bool   `json:"success"`
	UserID   ID     `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Message  string `json:"message"`
}

// SessionClaims is the payload of the locally issued session token.
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}
