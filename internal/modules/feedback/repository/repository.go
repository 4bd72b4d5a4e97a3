package repository

import (
	"context"
	"strings"

	"anoa.com/feedbackportal/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Feedback, error)
	FindBySubject(ctx context.Context, code string) ([]*entity.Feedback, error)
	FindByTeacher(ctx context.Context, teacherID uint) ([]*entity.Feedback, error)
	FindByAuthor(ctx context.Context, authorID uuid.UUID) ([]*entity.Feedback, error)
	Search(ctx context.Context, q string, limit int) ([]*entity.Feedback, error)
	FindBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]*entity.Feedback, error)
	// Delete removes the feedback with its messages, votes and participants
	// and returns the ids of the deleted messages.
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	GetParticipants(ctx context.Context, feedbackID uuid.UUID) ([]entity.User, error)
	RelatedTeacherNames(ctx context.Context, subjectCode string) ([]string, error)
	RelatedSubjectNames(ctx context.Context, teacherID uint) ([]string, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Subject").
		Preload("Teacher").
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		})
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *entity.Feedback) error {
	return r.db.WithContext(ctx).Omit("Subject", "Teacher", "Author").Create(feedback).Error
}

func (r *feedbackRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Feedback, error) {
	var feedback entity.Feedback
	if err := withRelations(r.db.WithContext(ctx)).First(&feedback, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) findWhere(ctx context.Context, query string, args ...interface{}) ([]*entity.Feedback, error) {
	var feedbacks []*entity.Feedback
	err := withRelations(r.db.WithContext(ctx)).
		Where(query, args...).
		Order("created_at desc").
		Find(&feedbacks).Error
	return feedbacks, err
}

func (r *feedbackRepository) FindBySubject(ctx context.Context, code string) ([]*entity.Feedback, error) {
	return r.findWhere(ctx, "subject_code = ?", code)
}

func (r *feedbackRepository) FindByTeacher(ctx context.Context, teacherID uint) ([]*entity.Feedback, error) {
	return r.findWhere(ctx, "teacher_id = ?", teacherID)
}

func (r *feedbackRepository) FindByAuthor(ctx context.Context, authorID uuid.UUID) ([]*entity.Feedback, error) {
	return r.findWhere(ctx, "author_id = ?", authorID)
}

// Search matches q against the feedback title and body and the names of its
// subject and teacher. An empty q returns the most recent feedback.
func (r *feedbackRepository) Search(ctx context.Context, q string, limit int) ([]*entity.Feedback, error) {
	query := withRelations(r.db.WithContext(ctx)).Model(&entity.Feedback{}).Select("feedbacks.*")

	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.
			Joins("LEFT JOIN subjects ON subjects.code = feedbacks.subject_code").
			Joins("LEFT JOIN teachers ON teachers.id = feedbacks.teacher_id").
			Where("LOWER(feedbacks.title) LIKE ? OR LOWER(feedbacks.body) LIKE ? OR LOWER(subjects.name) LIKE ? OR LOWER(teachers.name) LIKE ?",
				like, like, like, like)
	}

	var feedbacks []*entity.Feedback
	err := query.
		Order("feedbacks.created_at desc").
		Limit(limit).
		Find(&feedbacks).Error
	return feedbacks, err
}

// FindBatch pages through all feedback ordered by id. Ids are UUIDv7 so the
// order is also creation order.
func (r *feedbackRepository) FindBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]*entity.Feedback, error) {
	var feedbacks []*entity.Feedback
	query := withRelations(r.db.WithContext(ctx))
	if afterID != uuid.Nil {
		query = query.Where("id > ?", afterID)
	}
	err := query.Order("id asc").Limit(limit).Find(&feedbacks).Error
	return feedbacks, err
}

// Delete removes the feedback with its participants, messages and their
// votes in one transaction.
func (r *feedbackRepository) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var messageIDs []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Message{}).Where("feedback_id = ?", id).Pluck("id", &messageIDs).Error; err != nil {
			return err
		}

		if len(messageIDs) > 0 {
			if err := tx.Where("message_id IN ?", messageIDs).Delete(&entity.Vote{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("feedback_id = ?", id).Delete(&entity.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("feedback_id = ?", id).Delete(&entity.FeedbackParticipant{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.Feedback{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messageIDs, nil
}

func (r *feedbackRepository) GetParticipants(ctx context.Context, feedbackID uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Select("users.id", "users.username").
		Joins("JOIN feedback_participants ON feedback_participants.user_id = users.id").
		Where("feedback_participants.feedback_id = ?", feedbackID).
		Order("feedback_participants.joined_at asc").
		Find(&users).Error
	return users, err
}

func (r *feedbackRepository) RelatedTeacherNames(ctx context.Context, subjectCode string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&entity.Teacher{}).
		Distinct("teachers.name").
		Joins("JOIN feedbacks ON feedbacks.teacher_id = teachers.id").
		Where("feedbacks.subject_code = ?", subjectCode).
		Order("teachers.name asc").
		Pluck("teachers.name", &names).Error
	return names, err
}

func (r *feedbackRepository) RelatedSubjectNames(ctx context.Context, teacherID uint) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&entity.Subject{}).
		Distinct("subjects.name").
		Joins("JOIN feedbacks ON feedbacks.subject_code = subjects.code").
		Where("feedbacks.teacher_id = ?", teacherID).
		Order("subjects.name asc").
		Pluck("subjects.name", &names).Error
	return names, err
}
