package repository

import (
	"context"
	"strings"

	"anoa.com/feedbackportal/internal/entity"
	"gorm.io/gorm"
)

type SubjectRepository interface {
	Create(ctx context.Context, subject *entity.Subject) error
	FindByCode(ctx context.Context, code string) (*entity.Subject, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	FindAll(ctx context.Context, filter string) ([]*entity.Subject, error)
}

type subjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, subject *entity.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepository) FindByCode(ctx context.Context, code string) (*entity.Subject, error) {
	var subject entity.Subject
	if err := r.db.WithContext(ctx).First(&subject, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Subject{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// FindAll matches filter against the subject name, case-insensitively.
func (r *subjectRepository) FindAll(ctx context.Context, filter string) ([]*entity.Subject, error) {
	var subjects []*entity.Subject
	query := r.db.WithContext(ctx)

	if filter != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter)+"%")
	}

	if err := query.Order("code asc").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}
