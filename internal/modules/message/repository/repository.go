package repository

import (
	"context"
	"strings"

	"anoa.com/feedbackportal/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository interface {
	// Create stores the message and adds its author to the feedback's
	// participants.
	Create(ctx context.Context, message *entity.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	FindByFeedback(ctx context.Context, feedbackID uuid.UUID) ([]*entity.Message, error)
	UpdateBody(ctx context.Context, id uuid.UUID, body string) error
	// Delete removes the message and its votes. The message's author leaves
	// the participants once no message of theirs remains in the feedback,
	// whoever performs the delete. A staff member removing someone else's
	// message keeps their own participation.
	Delete(ctx context.Context, message *entity.Message) error
	SearchByFeedbackTitle(ctx context.Context, q string, limit int) ([]*entity.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Feedback", "Author").Create(message).Error; err != nil {
			return err
		}

		if message.AuthorID == nil {
			return nil
		}
		participant := &entity.FeedbackParticipant{
			FeedbackID: message.FeedbackID,
			UserID:     *message.AuthorID,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Omit("Feedback", "User").
			Create(participant).Error
	})
}

func (r *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	var message entity.Message
	if err := r.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindByFeedback(ctx context.Context, feedbackID uuid.UUID) ([]*entity.Message, error) {
	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Where("feedback_id = ?", feedbackID).
		Order("created_at asc").
		Order("id asc").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) UpdateBody(ctx context.Context, id uuid.UUID, body string) error {
	res := r.db.WithContext(ctx).Model(&entity.Message{}).Where("id = ?", id).Update("body", body)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", message.ID).Delete(&entity.Vote{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.Message{}, "id = ?", message.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if message.AuthorID == nil {
			return nil
		}

		var remaining int64
		if err := tx.Model(&entity.Message{}).
			Where("feedback_id = ? AND author_id = ?", message.FeedbackID, *message.AuthorID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
		return tx.Where("feedback_id = ? AND user_id = ?", message.FeedbackID, *message.AuthorID).
			Delete(&entity.FeedbackParticipant{}).Error
	})
}

func (r *messageRepository) SearchByFeedbackTitle(ctx context.Context, q string, limit int) ([]*entity.Message, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Select("messages.*").
		Joins("JOIN feedbacks ON feedbacks.id = messages.feedback_id").
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Preload("Feedback")

	if q != "" {
		query = query.Where("LOWER(feedbacks.title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var messages []*entity.Message
	err := query.Order("messages.created_at desc").Limit(limit).Find(&messages).Error
	return messages, err
}
