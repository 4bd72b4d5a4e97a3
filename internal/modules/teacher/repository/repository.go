package repository

import (
	"context"
	"strings"

	"anoa.com/feedbackportal/internal/entity"
	"gorm.io/gorm"
)

type TeacherRepository interface {
	Create(ctx context.Context, teacher *entity.Teacher) error
	FindByID(ctx context.Context, id uint) (*entity.Teacher, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context, filter string) ([]*entity.Teacher, error)
}

type teacherRepository struct {
	db *gorm.DB
}

func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) Create(ctx context.Context, teacher *entity.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepository) FindByID(ctx context.Context, id uint) (*entity.Teacher, error) {
	var teacher entity.Teacher
	if err := r.db.WithContext(ctx).First(&teacher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Teacher{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *teacherRepository) FindAll(ctx context.Context, filter string) ([]*entity.Teacher, error) {
	var teachers []*entity.Teacher
	query := r.db.WithContext(ctx)

	if filter != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter)+"%")
	}

	if err := query.Order("name asc").Find(&teachers).Error; err != nil {
		return nil, err
	}
	return teachers, nil
}
