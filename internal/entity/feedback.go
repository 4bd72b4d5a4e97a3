package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is a review of a subject, a teacher, or both.
type Feedback struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectCode *string    `gorm:"size:7;index" json:"subject_code,omitempty"`
	Subject     *Subject   `gorm:"foreignKey:SubjectCode;references:Code;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	TeacherID   *uint      `gorm:"index" json:"teacher_id,omitempty"`
	Teacher     *Teacher   `gorm:"constraint:OnDelete:SET NULL" json:"teacher,omitempty"`
	Title       string     `gorm:"size:40;not null" json:"title"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	AuthorID    *uuid.UUID `gorm:"type:uuid;index" json:"author_id,omitempty"`
	Author      *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	Stars       *float64   `json:"stars,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (f *Feedback) TableName() string {
	return "feedbacks"
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

// FeedbackParticipant records a user who has posted in a feedback thread.
type FeedbackParticipant struct {
	FeedbackID uuid.UUID `gorm:"type:uuid;primaryKey" json:"feedback_id"`
	Feedback   *Feedback `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	JoinedAt   time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (p *FeedbackParticipant) TableName() string {
	return "feedback_participants"
}

// Message is a forum reply inside a feedback thread.
type Message struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FeedbackID uuid.UUID  `gorm:"type:uuid;not null;index" json:"feedback_id"`
	Feedback   *Feedback  `gorm:"constraint:OnDelete:CASCADE" json:"feedback,omitempty"`
	AuthorID   *uuid.UUID `gorm:"type:uuid;index" json:"author_id,omitempty"`
	Author     *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
