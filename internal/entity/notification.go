package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationMessage = "message" // someone replied in your feedback thread
	NotificationVote    = "vote"    // someone voted on your message
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_user,priority:1" json:"user_id"` // recipient
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	Actor      *User     `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE" json:"actor,omitempty"`
	FeedbackID uuid.UUID `gorm:"type:uuid;not null" json:"feedback_id"` // thread to navigate to
	EntityID   uuid.UUID `gorm:"type:uuid;not null" json:"entity_id"`
	EntityType string    `gorm:"size:20;not null" json:"entity_type"` // 'feedback' or 'message'
	Type       string    `gorm:"size:20;not null" json:"type"`
	Text       string    `gorm:"type:text" json:"text"`
	IsRead     bool      `gorm:"not null;default:false;index:idx_notifications_user,priority:2" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
