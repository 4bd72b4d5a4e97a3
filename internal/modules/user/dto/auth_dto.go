package dto

import (
	commonDto "anoa.com/feedbackportal/pkg/dto"
	"github.com/google/uuid"
)

type RegisterInput struct {
	Username string  `json:"username" binding:"required,min=3,max=150"`
	Password string  `json:"password" binding:"required,min=8"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    *string   `json:"email,omitempty"`
	IsStaff  bool      `json:"is_staff"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}

type ProfileResponse struct {
	ID        uuid.UUID                   `json:"id"`
	Username  string                      `json:"username"`
	IsStaff   bool                        `json:"is_staff"`
	JoinedAt  string                      `json:"joined_at"`
	Feedbacks []commonDto.FeedbackSummary `json:"feedbacks"`
}
