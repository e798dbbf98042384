package dto

import (
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName string  `json:"first_name" binding:"required,max=100"`
	LastName  string  `json:"last_name" binding:"required,max=100"`
	Role      *string `json:"role" binding:"omitempty,oneof=student instructor ta admin"`
	StudentID *string `json:"student_id"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	Bio       *string `json:"bio"`
}

type UserSummary struct {
	ID    uuid.UUID  `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        UserSummary `json:"user"`
}

func NewUserSummary(u *model.User) UserSummary {
	return UserSummary{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.FullName(),
		Role:  u.Role,
	}
}
