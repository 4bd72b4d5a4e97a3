package teacher

import (
	"context"
	"errors"
	"strings"

	"anoa.com/feedbackportal/internal/entity"
	feedbackDto "anoa.com/feedbackportal/internal/modules/feedback/dto"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	teacherDto "anoa.com/feedbackportal/internal/modules/teacher/dto"
	"anoa.com/feedbackportal/internal/modules/teacher/repository"
	"anoa.com/feedbackportal/pkg/apperror"
	commonDto "anoa.com/feedbackportal/pkg/dto"
	"anoa.com/feedbackportal/pkg/rating"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TeacherService interface {
	CreateTeacher(ctx context.Context, actor uuid.UUID, req teacherDto.CreateTeacherRequest) (*commonDto.TeacherSummary, error)
	GetProfile(ctx context.Context, id uint) (*teacherDto.TeacherProfileResponse, error)
	ListTeachers(ctx context.Context, filter string) ([]commonDto.TeacherSummary, error)
}

type teacherService struct {
	repo         repository.TeacherRepository
	feedbackRepo feedbackRepo.FeedbackRepository
	log          *zap.Logger
}

func NewTeacherService(repo repository.TeacherRepository, feedbackRepo feedbackRepo.FeedbackRepository, log *zap.Logger) TeacherService {
	return &teacherService{
		repo:         repo,
		feedbackRepo: feedbackRepo,
		log:          log,
	}
}

func (s *teacherService) CreateTeacher(ctx context.Context, actor uuid.UUID, req teacherDto.CreateTeacherRequest) (*commonDto.TeacherSummary, error) {
	if actor == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "teacher name is required")
	}

	// Emails compare case-insensitively; store them lowercased.
	var email *string
	if req.Email != nil {
		if e := strings.ToLower(strings.TrimSpace(*req.Email)); e != "" {
			email = &e
		}
	}

	if email != nil {
		exists, err := s.repo.ExistsByEmail(ctx, *email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperror.Wrap(apperror.ErrDuplicateTeacherEmail, "a teacher with this email already exists")
		}
	}

	teacher := &entity.Teacher{Name: name, Email: email}
	if err := s.repo.Create(ctx, teacher); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrDuplicateTeacherEmail, "a teacher with this email already exists")
		}
		return nil, err
	}

	s.log.Info("teacher created", zap.Uint("teacher_id", teacher.ID), zap.String("actor_id", actor.String()))
	return toSummary(teacher), nil
}

func (s *teacherService) GetProfile(ctx context.Context, id uint) (*teacherDto.TeacherProfileResponse, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "teacher not found")
		}
		return nil, err
	}

	feedbacks, err := s.feedbackRepo.FindByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.feedbackRepo.RelatedSubjectNames(ctx, teacher.ID)
	if err != nil {
		return nil, err
	}
	if subjects == nil {
		subjects = []string{}
	}

	return &teacherDto.TeacherProfileResponse{
		TeacherSummary: *toSummary(teacher),
		Summary:        rating.Summarize(feedbacks),
		Subjects:       subjects,
		Feedbacks:      feedbackDto.NewFeedbackSummaries(feedbacks),
	}, nil
}

func (s *teacherService) ListTeachers(ctx context.Context, filter string) ([]commonDto.TeacherSummary, error) {
	teachers, err := s.repo.FindAll(ctx, strings.TrimSpace(filter))
	if err != nil {
		return nil, err
	}

	out := make([]commonDto.TeacherSummary, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, *toSummary(t))
	}
	return out, nil
}

func toSummary(t *entity.Teacher) *commonDto.TeacherSummary {
	return &commonDto.TeacherSummary{ID: t.ID, Name: t.Name, Email: t.Email}
}
