package vote_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/feedbackportal/internal/entity"
	voteRepo "anoa.com/feedbackportal/internal/modules/vote/repository"
	vote "anoa.com/feedbackportal/internal/modules/vote/service"
	"anoa.com/feedbackportal/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// hookRepo runs afterCount once, right after the next single-message count
// returns and before the service caches it.
type hookRepo struct {
	voteRepo.VoteRepository
	afterCount func()
}

func (r *hookRepo) CountVotes(ctx context.Context, messageID uuid.UUID) (voteRepo.Counts, error) {
	counts, err := r.VoteRepository.CountVotes(ctx, messageID)
	if hook := r.afterCount; hook != nil {
		r.afterCount = nil
		hook()
	}
	return counts, err
}

type cacheFixture struct {
	db      *gorm.DB
	repo    *hookRepo
	svc     vote.VoteService
	redis   *miniredis.Miniredis
	alice   *entity.User
	bob     *entity.User
	message *entity.Message
}

func setupCached(t *testing.T) *cacheFixture {
	t.Helper()
	db := testutil.NewDB(t)
	client, srv := testutil.NewRedis(t)

	alice := testutil.CreateUser(t, db, "alice", false)
	teacher := testutil.CreateTeacher(t, db, "Dr. Smith", nil)
	feedback := testutil.CreateFeedback(t, db, &entity.Feedback{TeacherID: &teacher.ID, AuthorID: &alice.ID})

	repo := &hookRepo{VoteRepository: voteRepo.NewVoteRepository(db)}
	return &cacheFixture{
		db:      db,
		repo:    repo,
		svc:     vote.NewVoteService(repo, client, nil, zap.NewNop()),
		redis:   srv,
		alice:   alice,
		bob:     testutil.CreateUser(t, db, "bob", false),
		message: testutil.CreateMessage(t, db, feedback, alice, "hello"),
	}
}

func (f *cacheFixture) countsKey() string {
	return "votes:message:" + f.message.ID.String()
}

func TestScoreServesCachedCounts(t *testing.T) {
	f := setupCached(t)
	ctx := context.Background()

	assert.False(t, f.redis.Exists(f.countsKey()))

	score, err := f.svc.Score(ctx, f.message.ID)
	require.NoError(t, err)
	assert.Zero(t, score)

	require.True(t, f.redis.Exists(f.countsKey()))
	assert.Equal(t, "0", f.redis.HGet(f.countsKey(), "up"))
	assert.Equal(t, "0", f.redis.HGet(f.countsKey(), "down"))
	assert.Equal(t, 7*24*time.Hour, f.redis.TTL(f.countsKey()))

	// A row written around the service stays invisible while the cache is warm.
	require.NoError(t, f.db.Create(&entity.Vote{UserID: f.bob.ID, MessageID: f.message.ID, Kind: entity.VoteDown}).Error)
	score, err = f.svc.Score(ctx, f.message.ID)
	require.NoError(t, err)
	assert.Zero(t, score)

	f.svc.InvalidateScores(ctx, f.message.ID)
	assert.False(t, f.redis.Exists(f.countsKey()))

	score, err = f.svc.Score(ctx, f.message.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), score)
}

func TestToggleVoteRefreshesCachedScore(t *testing.T) {
	f := setupCached(t)
	ctx := context.Background()

	_, err := f.svc.Score(ctx, f.message.ID)
	require.NoError(t, err)
	require.True(t, f.redis.Exists(f.countsKey()))

	res, err := f.svc.ToggleVote(ctx, f.bob.ID, f.message.ID, entity.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), res.Score)
	assert.Equal(t, "1", f.redis.HGet(f.countsKey(), "down"))

	res, err = f.svc.ToggleVote(ctx, f.bob.ID, f.message.ID, entity.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Score)
	assert.Equal(t, "1", f.redis.HGet(f.countsKey(), "up"))
	assert.Equal(t, "0", f.redis.HGet(f.countsKey(), "down"))

	scores, err := f.svc.Scores(ctx, []uuid.UUID{f.message.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), scores[f.message.ID])
}

func TestCacheFillDiscardedWhenToggleCommitsMeanwhile(t *testing.T) {
	f := setupCached(t)
	ctx := context.Background()

	// The toggle commits after the count was read but before it is cached.
	f.repo.afterCount = func() {
		_, err := f.svc.ToggleVote(ctx, f.bob.ID, f.message.ID, entity.VoteUp)
		require.NoError(t, err)
	}

	stale, err := f.svc.Score(ctx, f.message.ID)
	require.NoError(t, err)
	assert.Zero(t, stale)

	var up int64
	require.NoError(t, f.db.Model(&entity.Vote{}).Where("message_id = ? AND kind = ?", f.message.ID, entity.VoteUp).Count(&up).Error)
	require.Equal(t, int64(1), up)

	assert.Equal(t, "1", f.redis.HGet(f.countsKey(), "up"))
	score, err := f.svc.Score(ctx, f.message.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)
}

func TestScoreFallsBackToDatabaseWhenRedisIsDown(t *testing.T) {
	f := setupCached(t)
	ctx := context.Background()

	_, err := f.svc.ToggleVote(ctx, f.bob.ID, f.message.ID, entity.VoteUp)
	require.NoError(t, err)

	f.redis.Close()

	score, err := f.svc.Score(ctx, f.message.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)

	res, err := f.svc.ToggleVote(ctx, f.alice.ID, f.message.ID, entity.VoteDown)
	require.NoError(t, err)
	assert.Zero(t, res.Score)
}
