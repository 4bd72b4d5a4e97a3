package dto

import (
	"time"

	"anoa.com/feedbackportal/internal/entity"
	commonDto "anoa.com/feedbackportal/pkg/dto"
	"github.com/google/uuid"
)

type CreateMessageRequest struct {
	Body string `json:"body"`
}

type UpdateMessageRequest struct {
	Body string `json:"body"`
}

type MessageResponse struct {
	ID         uuid.UUID                `json:"id"`
	FeedbackID uuid.UUID                `json:"feedback_id"`
	Author     commonDto.AuthorResponse `json:"author"`
	Body       string                   `json:"body"`
	Score      int64                    `json:"score"`
	UserVote   *entity.VoteKind         `json:"user_vote,omitempty"`
	CreatedAt  string                   `json:"created_at"`
	UpdatedAt  string                   `json:"updated_at"`
}

// MessageSearchResult is a message found through its feedback's title.
type MessageSearchResult struct {
	MessageResponse
	FeedbackTitle string `json:"feedback_title"`
}

func NewMessageResponse(m *entity.Message, score int64, userVote *entity.VoteKind) MessageResponse {
	author := commonDto.AuthorResponse{Username: "Unknown"}
	if m.Author != nil && m.Author.ID != uuid.Nil {
		id := m.Author.ID
		author = commonDto.AuthorResponse{ID: &id, Username: m.Author.Username}
	}

	return MessageResponse{
		ID:         m.ID,
		FeedbackID: m.FeedbackID,
		Author:     author,
		Body:       m.Body,
		Score:      score,
		UserVote:   userVote,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  m.UpdatedAt.Format(time.RFC3339),
	}
}
