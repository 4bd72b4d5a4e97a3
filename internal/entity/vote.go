package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteKind string

const (
	VoteUp   VoteKind = "up"
	VoteDown VoteKind = "down"
)

func (k VoteKind) Valid() bool {
	return k == VoteUp || k == VoteDown
}

// Vote is unique per (user, message). It is only written through the
// vote ledger toggle; the kind may change but the pair never duplicates.
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_message,priority:1" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_message,priority:2;index:idx_votes_message" json:"message_id"`
	Message   *Message  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Kind      VoteKind  `gorm:"size:4;not null" json:"kind"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *Vote) TableName() string {
	return "votes"
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}
