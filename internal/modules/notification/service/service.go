package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/feedbackportal/internal/entity"
	notifDto "anoa.com/feedbackportal/internal/modules/notification/dto"
	notifRepo "anoa.com/feedbackportal/internal/modules/notification/repository"
	"anoa.com/feedbackportal/pkg/apperror"
	commonDto "anoa.com/feedbackportal/pkg/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	GetNotifications(ctx context.Context, userID uuid.UUID, filter notifDto.NotificationFilter) (*notifDto.PaginatedNotificationResponse, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	log         *zap.Logger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         log,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if notification.UserID == notification.ActorID {
		return nil
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
				s.log.Warn("failed to publish notification", zap.Error(err))
			}
		}
	}

	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, filter notifDto.NotificationFilter) (*notifDto.PaginatedNotificationResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	notifications, total, err := s.repo.GetByUserID(ctx, userID, filter.UnreadOnly, filter.Limit, filter.Offset())
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []entity.Notification{}
	}

	return &notifDto.PaginatedNotificationResponse{
		Data: notifications,
		Meta: commonDto.NewPaginationMeta(filter.PaginationQuery, total),
	}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	ok, err := s.repo.MarkAsRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrNotFound
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, apperror.ErrUnauthorized
	}
	return s.repo.CountUnread(ctx, userID)
}
