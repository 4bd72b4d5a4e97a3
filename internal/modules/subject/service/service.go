package subject

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/feedbackportal/internal/entity"
	feedbackDto "anoa.com/feedbackportal/internal/modules/feedback/dto"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	subjectDto "anoa.com/feedbackportal/internal/modules/subject/dto"
	"anoa.com/feedbackportal/internal/modules/subject/repository"
	"anoa.com/feedbackportal/pkg/apperror"
	commonDto "anoa.com/feedbackportal/pkg/dto"
	"anoa.com/feedbackportal/pkg/rating"
	"anoa.com/feedbackportal/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubjectService interface {
	CreateSubject(ctx context.Context, actor uuid.UUID, req subjectDto.CreateSubjectRequest) (*commonDto.SubjectSummary, error)
	GetProfile(ctx context.Context, code string) (*subjectDto.SubjectProfileResponse, error)
	ListSubjects(ctx context.Context, filter string) ([]commonDto.SubjectSummary, error)
}

type subjectService struct {
	repo         repository.SubjectRepository
	feedbackRepo feedbackRepo.FeedbackRepository
	log          *zap.Logger
}

func NewSubjectService(repo repository.SubjectRepository, feedbackRepo feedbackRepo.FeedbackRepository, log *zap.Logger) SubjectService {
	return &subjectService{
		repo:         repo,
		feedbackRepo: feedbackRepo,
		log:          log,
	}
}

func (s *subjectService) CreateSubject(ctx context.Context, actor uuid.UUID, req subjectDto.CreateSubjectRequest) (*commonDto.SubjectSummary, error) {
	if actor == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	code := strings.TrimSpace(req.Code)
	if err := validator.ValidateSubjectCode(code); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "subject name is required")
	}

	exists, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateCode(code)
	}

	subject := &entity.Subject{Code: code, Name: name}
	if err := s.repo.Create(ctx, subject); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicateCode(code)
		}
		return nil, err
	}

	s.log.Info("subject created", zap.String("code", code), zap.String("actor_id", actor.String()))
	return &commonDto.SubjectSummary{Code: subject.Code, Name: subject.Name}, nil
}

func (s *subjectService) GetProfile(ctx context.Context, code string) (*subjectDto.SubjectProfileResponse, error) {
	subject, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "subject not found")
		}
		return nil, err
	}

	feedbacks, err := s.feedbackRepo.FindBySubject(ctx, subject.Code)
	if err != nil {
		return nil, err
	}
	teachers, err := s.feedbackRepo.RelatedTeacherNames(ctx, subject.Code)
	if err != nil {
		return nil, err
	}
	if teachers == nil {
		teachers = []string{}
	}

	return &subjectDto.SubjectProfileResponse{
		SubjectSummary: commonDto.SubjectSummary{Code: subject.Code, Name: subject.Name},
		Summary:        rating.Summarize(feedbacks),
		Teachers:       teachers,
		Feedbacks:      feedbackDto.NewFeedbackSummaries(feedbacks),
	}, nil
}

func (s *subjectService) ListSubjects(ctx context.Context, filter string) ([]commonDto.SubjectSummary, error) {
	subjects, err := s.repo.FindAll(ctx, strings.TrimSpace(filter))
	if err != nil {
		return nil, err
	}

	out := make([]commonDto.SubjectSummary, 0, len(subjects))
	for _, sub := range subjects {
		out = append(out, commonDto.SubjectSummary{Code: sub.Code, Name: sub.Name})
	}
	return out, nil
}

func duplicateCode(code string) error {
	return apperror.Wrap(apperror.ErrDuplicateSubjectCode, fmt.Sprintf("subject %s already exists", code))
}
