package vote

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anoa.com/feedbackportal/internal/entity"
	notifService "anoa.com/feedbackportal/internal/modules/notification/service"
	voteDto "anoa.com/feedbackportal/internal/modules/vote/dto"
	"anoa.com/feedbackportal/internal/modules/vote/ledger"
	voteRepo "anoa.com/feedbackportal/internal/modules/vote/repository"
	"anoa.com/feedbackportal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const countsTTL = 7 * 24 * time.Hour

type VoteService interface {
	ToggleVote(ctx context.Context, actor, messageID uuid.UUID, kind entity.VoteKind) (*voteDto.ToggleVoteResponse, error)
	Score(ctx context.Context, messageID uuid.UUID) (int64, error)
	Scores(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	UserVotes(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) (map[uuid.UUID]entity.VoteKind, error)
	// InvalidateScores drops the cached counts of the given messages. Call it
	// after committing any change to their votes, such as deleting them.
	InvalidateScores(ctx context.Context, messageIDs ...uuid.UUID)
}

type voteService struct {
	repo                voteRepo.VoteRepository
	redisClient         *redis.Client
	notificationService notifService.NotificationService
	log                 *zap.Logger
}

func NewVoteService(repo voteRepo.VoteRepository, redisClient *redis.Client, notificationService notifService.NotificationService, log *zap.Logger) VoteService {
	return &voteService{
		repo:                repo,
		redisClient:         redisClient,
		notificationService: notificationService,
		log:                 log,
	}
}

func countsKey(messageID uuid.UUID) string {
	return fmt.Sprintf("votes:message:%s", messageID.String())
}

// versionKey is bumped on every committed change to a message's votes. Cache
// fills watch it and are discarded when it moves.
func versionKey(messageID uuid.UUID) string {
	return fmt.Sprintf("votes:message:%s:version", messageID.String())
}

func (s *voteService) ToggleVote(ctx context.Context, actor, messageID uuid.UUID, kind entity.VoteKind) (*voteDto.ToggleVoteResponse, error) {
	if actor == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if !kind.Valid() {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, fmt.Sprintf("unknown vote kind %q", kind))
	}

	result, err := s.repo.Toggle(ctx, actor, messageID, kind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "message not found")
		}
		return nil, err
	}

	s.InvalidateScores(ctx, messageID)

	if result.Outcome == ledger.Applied && result.MessageAuthorID != nil && *result.MessageAuthorID != actor {
		go s.notifyAuthor(context.WithoutCancel(ctx), actor, *result.MessageAuthorID, messageID, result)
	}

	score, err := s.Score(ctx, messageID)
	if err != nil {
		return nil, err
	}

	resp := &voteDto.ToggleVoteResponse{
		MessageID: messageID,
		Outcome:   result.Outcome,
		Score:     score,
	}
	if k, ok := result.Current.Kind(); ok {
		resp.Vote = &k
	}
	return resp, nil
}

func (s *voteService) notifyAuthor(ctx context.Context, actor, authorID, messageID uuid.UUID, result *voteRepo.ToggleResult) {
	if s.notificationService == nil {
		return
	}

	verb := "upvoted"
	if result.Current == ledger.Downvoted {
		verb = "downvoted"
	}

	notif := &entity.Notification{
		UserID:     authorID,
		ActorID:    actor,
		FeedbackID: result.FeedbackID,
		EntityID:   messageID,
		EntityType: "message",
		Type:       entity.NotificationVote,
		Text:       fmt.Sprintf("Someone %s your message", verb),
	}
	if err := s.notificationService.CreateNotification(ctx, notif); err != nil {
		s.log.Warn("failed to create vote notification", zap.Error(err))
	}
}

func (s *voteService) Score(ctx context.Context, messageID uuid.UUID) (int64, error) {
	scores, err := s.Scores(ctx, []uuid.UUID{messageID})
	if err != nil {
		return 0, err
	}
	return scores[messageID], nil
}

func (s *voteService) Scores(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	scores := make(map[uuid.UUID]int64, len(messageIDs))
	var missing []uuid.UUID
	for _, id := range messageIDs {
		if counts, ok := s.cachedCounts(ctx, id); ok {
			scores[id] = counts.Score()
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return scores, nil
	}

	counts, err := s.loadCounts(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		scores[id] = counts[id].Score()
	}
	return scores, nil
}

func (s *voteService) UserVotes(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) (map[uuid.UUID]entity.VoteKind, error) {
	return s.repo.GetUserVotes(ctx, userID, messageIDs)
}

func (s *voteService) InvalidateScores(ctx context.Context, messageIDs ...uuid.UUID) {
	if s.redisClient == nil || len(messageIDs) == 0 {
		return
	}

	// Runs after the database commit. Bumping the version fails any fill
	// that read the old rows; deleting the hash drops a fill that already won.
	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range messageIDs {
			pipe.Incr(ctx, versionKey(id))
			pipe.Expire(ctx, versionKey(id), countsTTL)
			pipe.Del(ctx, countsKey(id))
		}
		return nil
	})
	if err != nil {
		s.log.Warn("failed to invalidate vote counts", zap.Int("messages", len(messageIDs)), zap.Error(err))
	}
}

func (s *voteService) cachedCounts(ctx context.Context, messageID uuid.UUID) (voteRepo.Counts, bool) {
	if s.redisClient == nil {
		return voteRepo.Counts{}, false
	}

	val, err := s.redisClient.HGetAll(ctx, countsKey(messageID)).Result()
	if err != nil || len(val) == 0 {
		return voteRepo.Counts{}, false
	}

	up, errUp := strconv.ParseInt(val["up"], 10, 64)
	down, errDown := strconv.ParseInt(val["down"], 10, 64)
	if errUp != nil || errDown != nil {
		return voteRepo.Counts{}, false
	}
	return voteRepo.Counts{Up: up, Down: down}, true
}

// loadCounts reads counts from the database and caches them under WATCH on
// the version keys, so a toggle committed in between discards the fill.
func (s *voteService) loadCounts(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]voteRepo.Counts, error) {
	if s.redisClient == nil {
		return s.countVotes(ctx, messageIDs)
	}

	versions := make([]string, 0, len(messageIDs))
	for _, id := range messageIDs {
		versions = append(versions, versionKey(id))
	}

	var counts map[uuid.UUID]voteRepo.Counts
	var loadErr error
	err := s.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		counts, loadErr = s.countVotes(ctx, messageIDs)
		if loadErr != nil {
			return loadErr
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range messageIDs {
				key := countsKey(id)
				c := counts[id]
				pipe.HSet(ctx, key, "up", c.Up, "down", c.Down)
				// Set generic TTL for cleanup (e.g., 7 days of inactivity)
				pipe.Expire(ctx, key, countsTTL)
			}
			return nil
		})
		return err
	}, versions...)

	switch {
	case loadErr != nil:
		return nil, loadErr
	case counts == nil:
		// Redis failed before the database was read.
		s.log.Warn("failed to watch vote counts", zap.Error(err))
		return s.countVotes(ctx, messageIDs)
	case errors.Is(err, redis.TxFailedErr):
		s.log.Debug("vote counts changed while caching, skipping fill", zap.Int("messages", len(messageIDs)))
	case err != nil:
		s.log.Warn("failed to cache vote counts", zap.Error(err))
	}
	return counts, nil
}

func (s *voteService) countVotes(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]voteRepo.Counts, error) {
	if len(messageIDs) != 1 {
		return s.repo.CountVotesForMessages(ctx, messageIDs)
	}
	c, err := s.repo.CountVotes(ctx, messageIDs[0])
	if err != nil {
		return nil, err
	}
	return map[uuid.UUID]voteRepo.Counts{messageIDs[0]: c}, nil
}
