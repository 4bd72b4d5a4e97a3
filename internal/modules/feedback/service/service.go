package feedback

import (
	"context"
	"errors"
	"strings"

	"anoa.com/feedbackportal/internal/entity"
	feedbackDto "anoa.com/feedbackportal/internal/modules/feedback/dto"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	messageDto "anoa.com/feedbackportal/internal/modules/message/dto"
	messageRepo "anoa.com/feedbackportal/internal/modules/message/repository"
	search "anoa.com/feedbackportal/internal/modules/search/service"
	subjectRepo "anoa.com/feedbackportal/internal/modules/subject/repository"
	teacherRepo "anoa.com/feedbackportal/internal/modules/teacher/repository"
	userRepo "anoa.com/feedbackportal/internal/modules/user/repository"
	vote "anoa.com/feedbackportal/internal/modules/vote/service"
	"anoa.com/feedbackportal/pkg/apperror"
	commonDto "anoa.com/feedbackportal/pkg/dto"
	"anoa.com/feedbackportal/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FeedbackService interface {
	CreateFeedback(ctx context.Context, actor uuid.UUID, req feedbackDto.CreateFeedbackRequest) (*feedbackDto.FeedbackResponse, error)
	CreateForumFeedback(ctx context.Context, actor uuid.UUID, req feedbackDto.CreateFeedbackRequest) (*feedbackDto.FeedbackResponse, error)
	GetThread(ctx context.Context, viewer, id uuid.UUID) (*feedbackDto.ThreadResponse, error)
	DeleteFeedback(ctx context.Context, actor, id uuid.UUID) error
}

type feedbackService struct {
	repo        feedbackRepo.FeedbackRepository
	subjectRepo subjectRepo.SubjectRepository
	teacherRepo teacherRepo.TeacherRepository
	messageRepo messageRepo.MessageRepository
	userRepo    userRepo.UserRepository
	voteService vote.VoteService
	indexer     search.FeedbackIndexer
	log         *zap.Logger
}

func NewFeedbackService(repo feedbackRepo.FeedbackRepository, subjectRepo subjectRepo.SubjectRepository, teacherRepo teacherRepo.TeacherRepository, messageRepo messageRepo.MessageRepository, userRepo userRepo.UserRepository, voteService vote.VoteService, indexer search.FeedbackIndexer, log *zap.Logger) FeedbackService {
	return &feedbackService{
		repo:        repo,
		subjectRepo: subjectRepo,
		teacherRepo: teacherRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		voteService: voteService,
		indexer:     indexer,
		log:         log,
	}
}

func (s *feedbackService) CreateFeedback(ctx context.Context, actor uuid.UUID, req feedbackDto.CreateFeedbackRequest) (*feedbackDto.FeedbackResponse, error) {
	if actor == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if err := validator.ValidateStars(req.Stars); err != nil {
		return nil, err
	}
	return s.create(ctx, actor, req)
}

// CreateForumFeedback opens an unrated discussion about a subject or teacher.
func (s *feedbackService) CreateForumFeedback(ctx context.Context, actor uuid.UUID, req feedbackDto.CreateFeedbackRequest) (*feedbackDto.FeedbackResponse, error) {
	if actor == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if req.Stars != nil {
		return nil, apperror.Wrap(apperror.ErrInvalidRating, "forum feedback cannot carry a rating")
	}
	return s.create(ctx, actor, req)
}

func (s *feedbackService) create(ctx context.Context, actor uuid.UUID, req feedbackDto.CreateFeedbackRequest) (*feedbackDto.FeedbackResponse, error) {
	subjectCode := normalizeCode(req.SubjectCode)
	teacherID := req.TeacherID
	if teacherID != nil && *teacherID == 0 {
		teacherID = nil
	}

	if err := validator.ValidateTarget(subjectCode, teacherID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if title == "" || body == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "title and body are required")
	}

	feedback := &entity.Feedback{
		SubjectCode: subjectCode,
		TeacherID:   teacherID,
		Title:       title,
		Body:        body,
		AuthorID:    &actor,
		Stars:       req.Stars,
	}

	if subjectCode != nil {
		if err := validator.ValidateSubjectCode(*subjectCode); err != nil {
			return nil, err
		}
		subject, err := s.subjectRepo.FindByCode(ctx, *subjectCode)
		if err != nil {
			return nil, notFound(err, "subject not found")
		}
		feedback.Subject = subject
	}
	if teacherID != nil {
		teacher, err := s.teacherRepo.FindByID(ctx, *teacherID)
		if err != nil {
			return nil, notFound(err, "teacher not found")
		}
		feedback.Teacher = teacher
	}

	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, err
	}

	if author, err := s.userRepo.FindByID(ctx, actor); err == nil {
		feedback.Author = author
	}

	if s.indexer != nil {
		if err := s.indexer.IndexFeedback(feedback); err != nil {
			s.log.Warn("failed to index feedback", zap.String("feedback_id", feedback.ID.String()), zap.Error(err))
		}
	}

	resp := feedbackDto.NewFeedbackResponse(feedback)
	return &resp, nil
}

func (s *feedbackService) GetThread(ctx context.Context, viewer, id uuid.UUID) (*feedbackDto.ThreadResponse, error) {
	feedback, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "feedback not found")
	}

	messages, err := s.messageRepo.FindByFeedback(ctx, id)
	if err != nil {
		return nil, err
	}

	messageIDs := make([]uuid.UUID, 0, len(messages))
	for _, m := range messages {
		messageIDs = append(messageIDs, m.ID)
	}

	scores, err := s.voteService.Scores(ctx, messageIDs)
	if err != nil {
		return nil, err
	}
	userVotes, err := s.voteService.UserVotes(ctx, viewer, messageIDs)
	if err != nil {
		return nil, err
	}

	participants, err := s.repo.GetParticipants(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &feedbackDto.ThreadResponse{
		Feedback:     feedbackDto.NewFeedbackResponse(feedback),
		Messages:     make([]messageDto.MessageResponse, 0, len(messages)),
		Participants: make([]commonDto.AuthorResponse, 0, len(participants)),
	}
	for _, m := range messages {
		var userVote *entity.VoteKind
		if k, ok := userVotes[m.ID]; ok {
			userVote = &k
		}
		resp.Messages = append(resp.Messages, messageDto.NewMessageResponse(m, scores[m.ID], userVote))
	}
	for i := range participants {
		resp.Participants = append(resp.Participants, feedbackDto.NewAuthorResponse(&participants[i]))
	}
	return resp, nil
}

func (s *feedbackService) DeleteFeedback(ctx context.Context, actor, id uuid.UUID) error {
	if actor == uuid.Nil {
		return apperror.ErrUnauthorized
	}

	feedback, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "feedback not found")
	}

	user, err := s.userRepo.FindByID(ctx, actor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrUnauthorized
		}
		return err
	}
	if !user.CanModify(feedback.AuthorID) {
		return apperror.Wrap(apperror.ErrForbidden, "only the author or staff can delete this feedback")
	}

	messageIDs, err := s.repo.Delete(ctx, id)
	if err != nil {
		return notFound(err, "feedback not found")
	}
	s.voteService.InvalidateScores(ctx, messageIDs...)

	if s.indexer != nil {
		if err := s.indexer.DeleteFeedback(id.String()); err != nil {
			s.log.Warn("failed to remove feedback from index", zap.String("feedback_id", id.String()), zap.Error(err))
		}
	}
	return nil
}

func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func notFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(apperror.ErrNotFound, message)
	}
	return err
}
