package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/feedbackportal/internal/entity"
	feedbackDto "anoa.com/feedbackportal/internal/modules/feedback/dto"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	"anoa.com/feedbackportal/internal/modules/user/dto"
	"anoa.com/feedbackportal/internal/modules/user/repository"
	"anoa.com/feedbackportal/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInvalidCredentials = apperror.Wrap(apperror.ErrUnauthorized, "invalid credentials")

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*dto.ProfileResponse, error)
}

type authService struct {
	repo         repository.UserRepository
	feedbackRepo feedbackRepo.FeedbackRepository
	secret       string
	tokenTTL     time.Duration
	log          *zap.Logger
}

func NewAuthService(repo repository.UserRepository, feedbackRepo feedbackRepo.FeedbackRepository, secret string, tokenTTL time.Duration, log *zap.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &authService{
		repo:         repo,
		feedbackRepo: feedbackRepo,
		secret:       secret,
		tokenTTL:     tokenTTL,
		log:          log,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "username is required")
	}
	if len(input.Password) < 8 {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "password must be at least 8 characters")
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Wrap(apperror.ErrDuplicateUsername, "username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var email *string
	if input.Email != nil {
		if e := strings.ToLower(strings.TrimSpace(*input.Email)); e != "" {
			email = &e
		}
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrDuplicateUsername, "username or email already taken")
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *authService) GetProfile(ctx context.Context, id uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "user not found")
		}
		return nil, err
	}

	feedbacks, err := s.feedbackRepo.FindByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		IsStaff:   user.IsStaff,
		JoinedAt:  user.CreatedAt.Format(time.RFC3339),
		Feedbacks: feedbackDto.NewFeedbackSummaries(feedbacks),
	}, nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User: dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			IsStaff:  user.IsStaff,
		},
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
