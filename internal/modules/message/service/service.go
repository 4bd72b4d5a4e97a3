package message

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/feedbackportal/internal/entity"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	messageDto "anoa.com/feedbackportal/internal/modules/message/dto"
	messageRepo "anoa.com/feedbackportal/internal/modules/message/repository"
	notifService "anoa.com/feedbackportal/internal/modules/notification/service"
	userRepo "anoa.com/feedbackportal/internal/modules/user/repository"
	vote "anoa.com/feedbackportal/internal/modules/vote/service"
	"anoa.com/feedbackportal/pkg/apperror"
	"anoa.com/feedbackportal/pkg/ratelimiter"
	"anoa.com/feedbackportal/pkg/validator"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MessageService interface {
	CreateMessage(ctx context.Context, actor, feedbackID uuid.UUID, req messageDto.CreateMessageRequest) (*messageDto.MessageResponse, error)
	UpdateMessage(ctx context.Context, actor, id uuid.UUID, req messageDto.UpdateMessageRequest) (*messageDto.MessageResponse, error)
	DeleteMessage(ctx context.Context, actor, id uuid.UUID) error
}

type messageService struct {
	repo                messageRepo.MessageRepository
	feedbackRepo        feedbackRepo.FeedbackRepository
	userRepo            userRepo.UserRepository
	voteService         vote.VoteService
	notificationService notifService.NotificationService
	redisClient         *redis.Client
	cooldown            time.Duration
	log                 *zap.Logger
}

func NewMessageService(repo messageRepo.MessageRepository, feedbackRepo feedbackRepo.FeedbackRepository, userRepo userRepo.UserRepository, voteService vote.VoteService, notificationService notifService.NotificationService, redisClient *redis.Client, cooldown time.Duration, log *zap.Logger) MessageService {
	return &messageService{
		repo:                repo,
		feedbackRepo:        feedbackRepo,
		userRepo:            userRepo,
		voteService:         voteService,
		notificationService: notificationService,
		redisClient:         redisClient,
		cooldown:            cooldown,
		log:                 log,
	}
}

func (s *messageService) CreateMessage(ctx context.Context, actor, feedbackID uuid.UUID, req messageDto.CreateMessageRequest) (*messageDto.MessageResponse, error) {
	if actor == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	body := strings.TrimSpace(req.Body)
	if err := validator.ValidateMessageBody(body); err != nil {
		return nil, err
	}

	feedback, err := s.feedbackRepo.FindByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "feedback not found")
		}
		return nil, err
	}

	author, err := s.userRepo.FindByID(ctx, actor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	rollback, err := ratelimiter.Guard(ctx, s.redisClient, actor, ratelimiter.ScopeMessage, s.cooldown)
	if err != nil {
		return nil, err
	}

	msg := &entity.Message{
		FeedbackID: feedback.ID,
		AuthorID:   &actor,
		Body:       body,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		rollback()
		return nil, err
	}
	msg.Author = author

	if feedback.AuthorID != nil && *feedback.AuthorID != actor {
		go s.notifyFeedbackAuthor(context.WithoutCancel(ctx), actor, *feedback.AuthorID, msg)
	}

	resp := messageDto.NewMessageResponse(msg, 0, nil)
	return &resp, nil
}

func (s *messageService) notifyFeedbackAuthor(ctx context.Context, actor, authorID uuid.UUID, msg *entity.Message) {
	if s.notificationService == nil {
		return
	}

	notif := &entity.Notification{
		UserID:     authorID,
		ActorID:    actor,
		FeedbackID: msg.FeedbackID,
		EntityID:   msg.ID,
		EntityType: "message",
		Type:       entity.NotificationMessage,
		Text:       "Someone replied to your feedback",
	}
	if err := s.notificationService.CreateNotification(ctx, notif); err != nil {
		s.log.Warn("failed to create message notification", zap.Error(err))
	}
}

func (s *messageService) UpdateMessage(ctx context.Context, actor, id uuid.UUID, req messageDto.UpdateMessageRequest) (*messageDto.MessageResponse, error) {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(req.Body)
	if err := validator.ValidateMessageBody(body); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBody(ctx, id, body); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "message not found")
		}
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	score, err := s.voteService.Score(ctx, id)
	if err != nil {
		return nil, err
	}
	votes, err := s.voteService.UserVotes(ctx, actor, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	var userVote *entity.VoteKind
	if k, ok := votes[id]; ok {
		userVote = &k
	}

	resp := messageDto.NewMessageResponse(updated, score, userVote)
	return &resp, nil
}

func (s *messageService) DeleteMessage(ctx context.Context, actor, id uuid.UUID) error {
	msg, err := s.authorize(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, msg); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Wrap(apperror.ErrNotFound, "message not found")
		}
		return err
	}
	s.voteService.InvalidateScores(ctx, msg.ID)
	return nil
}

// authorize loads the message and checks that actor is its author or staff.
func (s *messageService) authorize(ctx context.Context, actor, id uuid.UUID) (*entity.Message, error) {
	if actor == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "message not found")
		}
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, actor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	if !user.CanModify(msg.AuthorID) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "only the author or staff can modify this message")
	}
	return msg, nil
}
