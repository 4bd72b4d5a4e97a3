package message_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/feedbackportal/internal/entity"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	messageDto "anoa.com/feedbackportal/internal/modules/message/dto"
	messageRepo "anoa.com/feedbackportal/internal/modules/message/repository"
	message "anoa.com/feedbackportal/internal/modules/message/service"
	notifDto "anoa.com/feedbackportal/internal/modules/notification/dto"
	userRepo "anoa.com/feedbackportal/internal/modules/user/repository"
	voteRepo "anoa.com/feedbackportal/internal/modules/vote/repository"
	vote "anoa.com/feedbackportal/internal/modules/vote/service"
	"anoa.com/feedbackportal/internal/testutil"
	"anoa.com/feedbackportal/pkg/apperror"
	"anoa.com/feedbackportal/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	created chan *entity.Notification
}

func (n *recordingNotifier) CreateNotification(_ context.Context, notification *entity.Notification) error {
	n.created <- notification
	return nil
}

func (n *recordingNotifier) GetNotifications(context.Context, uuid.UUID, notifDto.NotificationFilter) (*notifDto.PaginatedNotificationResponse, error) {
	return nil, nil
}

func (n *recordingNotifier) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (n *recordingNotifier) MarkAllAsRead(context.Context, uuid.UUID) error { return nil }

func (n *recordingNotifier) UnreadCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

type fixture struct {
	db       *gorm.DB
	svc      message.MessageService
	votes    vote.VoteService
	notifier *recordingNotifier
	alice    *entity.User
	bob      *entity.User
	staff    *entity.User
	feedback *entity.Feedback
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return setupWithRedis(t, nil)
}

func setupWithRedis(t *testing.T, redisClient *redis.Client) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	notifier := &recordingNotifier{created: make(chan *entity.Notification, 8)}
	votes := vote.NewVoteService(voteRepo.NewVoteRepository(db), redisClient, nil, zap.NewNop())

	svc := message.NewMessageService(
		messageRepo.NewMessageRepository(db),
		feedbackRepo.NewFeedbackRepository(db),
		userRepo.NewUserRepository(db),
		votes,
		notifier,
		redisClient,
		5*time.Second,
		zap.NewNop(),
	)

	alice := testutil.CreateUser(t, db, "alice", false)
	teacher := testutil.CreateTeacher(t, db, "Dr. Smith", nil)
	return &fixture{
		db:       db,
		svc:      svc,
		votes:    votes,
		notifier: notifier,
		alice:    alice,
		bob:      testutil.CreateUser(t, db, "bob", false),
		staff:    testutil.CreateUser(t, db, "admin", true),
		feedback: testutil.CreateFeedback(t, db, &entity.Feedback{TeacherID: &teacher.ID, AuthorID: &alice.ID}),
	}
}

func TestCreateMessage(t *testing.T) {
	f := setup(t)

	res, err := f.svc.CreateMessage(context.Background(), f.bob.ID, f.feedback.ID, messageDto.CreateMessageRequest{Body: "  agreed  "})
	require.NoError(t, err)
	assert.Equal(t, "agreed", res.Body)
	assert.Equal(t, "bob", res.Author.Username)
	assert.Zero(t, res.Score)

	var participant entity.FeedbackParticipant
	require.NoError(t, f.db.First(&participant, "feedback_id = ? AND user_id = ?", f.feedback.ID, f.bob.ID).Error)

	select {
	case n := <-f.notifier.created:
		assert.Equal(t, f.alice.ID, n.UserID)
		assert.Equal(t, f.bob.ID, n.ActorID)
		assert.Equal(t, entity.NotificationMessage, n.Type)
		assert.Equal(t, f.feedback.ID, n.FeedbackID)
		assert.Equal(t, res.ID, n.EntityID)
	case <-time.After(2 * time.Second):
		t.Fatal("feedback author was not notified")
	}
}

func TestCreateMessageByFeedbackAuthorDoesNotNotify(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateMessage(context.Background(), f.alice.ID, f.feedback.ID, messageDto.CreateMessageRequest{Body: "bump"})
	require.NoError(t, err)

	select {
	case n := <-f.notifier.created:
		t.Fatalf("unexpected notification %+v", n)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCreateMessageValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateMessage(ctx, f.bob.ID, f.feedback.ID, messageDto.CreateMessageRequest{Body: " \n "})
	assert.True(t, errors.Is(err, apperror.ErrEmptyMessageBody))
	assert.Equal(t, "empty_message_body", apperror.Kind(err))

	_, err = f.svc.CreateMessage(ctx, uuid.Nil, f.feedback.ID, messageDto.CreateMessageRequest{Body: "hi"})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	_, err = f.svc.CreateMessage(ctx, f.bob.ID, uuid.New(), messageDto.CreateMessageRequest{Body: "hi"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	var count int64
	require.NoError(t, f.db.Model(&entity.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateMessage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	msg := testutil.CreateMessage(t, f.db, f.feedback, f.bob, "draft")

	_, err := f.svc.UpdateMessage(ctx, f.alice.ID, msg.ID, messageDto.UpdateMessageRequest{Body: "hijack"})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.svc.UpdateMessage(ctx, f.bob.ID, msg.ID, messageDto.UpdateMessageRequest{Body: ""})
	assert.True(t, errors.Is(err, apperror.ErrEmptyMessageBody))

	_, err = f.votes.ToggleVote(ctx, f.alice.ID, msg.ID, entity.VoteUp)
	require.NoError(t, err)

	res, err := f.svc.UpdateMessage(ctx, f.bob.ID, msg.ID, messageDto.UpdateMessageRequest{Body: "final"})
	require.NoError(t, err)
	assert.Equal(t, "final", res.Body)
	assert.Equal(t, int64(1), res.Score)

	res, err = f.svc.UpdateMessage(ctx, f.staff.ID, msg.ID, messageDto.UpdateMessageRequest{Body: "moderated"})
	require.NoError(t, err)
	assert.Equal(t, "moderated", res.Body)

	_, err = f.svc.UpdateMessage(ctx, f.bob.ID, uuid.New(), messageDto.UpdateMessageRequest{Body: "x"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeleteMessage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.CreateMessage(ctx, f.bob.ID, f.feedback.ID, messageDto.CreateMessageRequest{Body: "only one"})
	require.NoError(t, err)

	err = f.svc.DeleteMessage(ctx, f.alice.ID, res.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	err = f.svc.DeleteMessage(ctx, uuid.Nil, res.ID)
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	require.NoError(t, f.svc.DeleteMessage(ctx, f.staff.ID, res.ID))

	var participants int64
	require.NoError(t, f.db.Model(&entity.FeedbackParticipant{}).
		Where("feedback_id = ? AND user_id = ?", f.feedback.ID, f.bob.ID).
		Count(&participants).Error)
	assert.Zero(t, participants, "bob left the thread with his last message")

	err = f.svc.DeleteMessage(ctx, f.bob.ID, res.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCreateMessageCooldown(t *testing.T) {
	client, srv := testutil.NewRedis(t)
	f := setupWithRedis(t, client)
	ctx := context.Background()
	req := messageDto.CreateMessageRequest{Body: "first"}

	_, err := f.svc.CreateMessage(ctx, f.bob.ID, f.feedback.ID, req)
	require.NoError(t, err)

	_, err = f.svc.CreateMessage(ctx, f.bob.ID, f.feedback.ID, req)
	var rateLimitErr *ratelimiter.RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, 5*time.Second, rateLimitErr.RetryAfter)
	assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))
	assert.Equal(t, 429, apperror.MapErrorToStatus(err))

	// The cooldown is per user.
	_, err = f.svc.CreateMessage(ctx, f.alice.ID, f.feedback.ID, req)
	require.NoError(t, err)

	srv.FastForward(5 * time.Second)
	_, err = f.svc.CreateMessage(ctx, f.bob.ID, f.feedback.ID, req)
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&entity.Message{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestDeleteMessageDropsCachedScore(t *testing.T) {
	client, srv := testutil.NewRedis(t)
	f := setupWithRedis(t, client)
	ctx := context.Background()

	msg := testutil.CreateMessage(t, f.db, f.feedback, f.bob, "reply")
	res, err := f.votes.ToggleVote(ctx, f.alice.ID, msg.ID, entity.VoteUp)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Score)

	key := "votes:message:" + msg.ID.String()
	require.True(t, srv.Exists(key))

	require.NoError(t, f.svc.DeleteMessage(ctx, f.bob.ID, msg.ID))
	assert.False(t, srv.Exists(key))

	score, err := f.votes.Score(ctx, msg.ID)
	require.NoError(t, err)
	assert.Zero(t, score)
}
