package dto

import (
	"anoa.com/feedbackportal/internal/entity"
	"anoa.com/feedbackportal/internal/modules/vote/ledger"
	"github.com/google/uuid"
)

type ToggleVoteRequest struct {
	MessageID uuid.UUID       `json:"message_id" binding:"required"`
	Kind      entity.VoteKind `json:"kind" binding:"required,oneof=up down"`
}

type ToggleVoteResponse struct {
	MessageID uuid.UUID        `json:"message_id"`
	Outcome   ledger.Outcome   `json:"outcome"`
	Vote      *entity.VoteKind `json:"vote"`
	Score     int64            `json:"score"`
}

type ScoreResponse struct {
	MessageID uuid.UUID `json:"message_id"`
	Score     int64     `json:"score"`
}
