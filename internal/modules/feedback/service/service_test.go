package feedback_test

import (
	"context"
	"errors"
	"testing"

	"anoa.com/feedbackportal/internal/entity"
	feedbackDto "anoa.com/feedbackportal/internal/modules/feedback/dto"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	feedback "anoa.com/feedbackportal/internal/modules/feedback/service"
	messageRepo "anoa.com/feedbackportal/internal/modules/message/repository"
	subjectRepo "anoa.com/feedbackportal/internal/modules/subject/repository"
	teacherRepo "anoa.com/feedbackportal/internal/modules/teacher/repository"
	userRepo "anoa.com/feedbackportal/internal/modules/user/repository"
	voteRepo "anoa.com/feedbackportal/internal/modules/vote/repository"
	vote "anoa.com/feedbackportal/internal/modules/vote/service"
	"anoa.com/feedbackportal/internal/testutil"
	"anoa.com/feedbackportal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     feedback.FeedbackService
	votes   vote.VoteService
	indexer *testutil.RecordingIndexer
	alice   *entity.User
	bob     *entity.User
	staff   *entity.User
	subject *entity.Subject
	teacher *entity.Teacher
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return setupWithRedis(t, nil)
}

func setupWithRedis(t *testing.T, redisClient *redis.Client) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	indexer := testutil.NewRecordingIndexer()
	votes := vote.NewVoteService(voteRepo.NewVoteRepository(db), redisClient, nil, zap.NewNop())

	svc := feedback.NewFeedbackService(
		feedbackRepo.NewFeedbackRepository(db),
		subjectRepo.NewSubjectRepository(db),
		teacherRepo.NewTeacherRepository(db),
		messageRepo.NewMessageRepository(db),
		userRepo.NewUserRepository(db),
		votes,
		indexer,
		zap.NewNop(),
	)

	return &fixture{
		db:      db,
		svc:     svc,
		votes:   votes,
		indexer: indexer,
		alice:   testutil.CreateUser(t, db, "alice", false),
		bob:     testutil.CreateUser(t, db, "bob", false),
		staff:   testutil.CreateUser(t, db, "admin", true),
		subject: testutil.CreateSubject(t, db, "INF1343", "Databases"),
		teacher: testutil.CreateTeacher(t, db, "Dr. Smith", testutil.Ptr("smith@uni.edu")),
	}
}

func TestCreateFeedback(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.CreateFeedback(ctx, f.alice.ID, feedbackDto.CreateFeedbackRequest{
		SubjectCode: testutil.Ptr("INF1343"),
		TeacherID:   &f.teacher.ID,
		Title:       "Great course",
		Body:        "Loved the labs",
		Stars:       testutil.Ptr(4.5),
	})
	require.NoError(t, err)

	assert.Equal(t, "Great course", res.Title)
	require.NotNil(t, res.Subject)
	assert.Equal(t, "Databases", res.Subject.Name)
	require.NotNil(t, res.Teacher)
	assert.Equal(t, "Dr. Smith", res.Teacher.Name)
	assert.Equal(t, "alice", res.Author.Username)
	require.NotNil(t, res.Stars)
	assert.Equal(t, 4.5, *res.Stars)
	assert.Equal(t, 1, f.indexer.Len())
}

func TestCreateFeedbackTeacherOnly(t *testing.T) {
	f := setup(t)

	res, err := f.svc.CreateFeedback(context.Background(), f.alice.ID, feedbackDto.CreateFeedbackRequest{
		TeacherID: &f.teacher.ID,
		Title:     "Clear lectures",
		Body:      "Explains well",
		Stars:     testutil.Ptr(3.5),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Subject)
	assert.NotNil(t, res.Teacher)
}

func TestCreateFeedbackValidation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		req  feedbackDto.CreateFeedbackRequest
		want error
	}{
		{
			name: "not a half step",
			req:  feedbackDto.CreateFeedbackRequest{SubjectCode: testutil.Ptr("INF1343"), Title: "t", Body: "b", Stars: testutil.Ptr(3.3)},
			want: apperror.ErrInvalidRating,
		},
		{
			name: "out of range",
			req:  feedbackDto.CreateFeedbackRequest{SubjectCode: testutil.Ptr("INF1343"), Title: "t", Body: "b", Stars: testutil.Ptr(6.0)},
			want: apperror.ErrInvalidRating,
		},
		{
			name: "no target",
			req:  feedbackDto.CreateFeedbackRequest{Title: "t", Body: "b", Stars: testutil.Ptr(4.0)},
			want: apperror.ErrMissingTarget,
		},
		{
			name: "zero teacher id counts as absent",
			req:  feedbackDto.CreateFeedbackRequest{TeacherID: testutil.Ptr(uint(0)), Title: "t", Body: "b"},
			want: apperror.ErrMissingTarget,
		},
		{
			name: "malformed subject code",
			req:  feedbackDto.CreateFeedbackRequest{SubjectCode: testutil.Ptr("inf1343"), Title: "t", Body: "b"},
			want: apperror.ErrInvalidSubjectCode,
		},
		{
			name: "unknown subject",
			req:  feedbackDto.CreateFeedbackRequest{SubjectCode: testutil.Ptr("MAT0001"), Title: "t", Body: "b"},
			want: apperror.ErrNotFound,
		},
		{
			name: "unknown teacher",
			req:  feedbackDto.CreateFeedbackRequest{TeacherID: testutil.Ptr(uint(999)), Title: "t", Body: "b"},
			want: apperror.ErrNotFound,
		},
		{
			name: "blank title",
			req:  feedbackDto.CreateFeedbackRequest{SubjectCode: testutil.Ptr("INF1343"), Title: "  ", Body: "b"},
			want: apperror.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateFeedback(context.Background(), f.alice.ID, tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&entity.Feedback{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, f.indexer.Len())
}

func TestCreateFeedbackRequiresActor(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateFeedback(context.Background(), uuid.Nil, feedbackDto.CreateFeedbackRequest{
		SubjectCode: testutil.Ptr("INF1343"), Title: "t", Body: "b",
	})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}

func TestCreateForumFeedback(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateForumFeedback(ctx, f.alice.ID, feedbackDto.CreateFeedbackRequest{
		SubjectCode: testutil.Ptr("INF1343"), Title: "t", Body: "b", Stars: testutil.Ptr(4.0),
	})
	assert.True(t, errors.Is(err, apperror.ErrInvalidRating))

	_, err = f.svc.CreateForumFeedback(ctx, f.alice.ID, feedbackDto.CreateFeedbackRequest{Title: "t", Body: "b"})
	assert.True(t, errors.Is(err, apperror.ErrMissingTarget))

	res, err := f.svc.CreateForumFeedback(ctx, f.alice.ID, feedbackDto.CreateFeedbackRequest{
		SubjectCode: testutil.Ptr("INF1343"), Title: "Exam tips?", Body: "Anyone?",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Stars)
}

func TestGetThread(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	fb := testutil.CreateFeedback(t, f.db, &entity.Feedback{SubjectCode: &f.subject.Code, AuthorID: &f.alice.ID, Title: "Thread"})
	first := testutil.CreateMessage(t, f.db, fb, f.alice, "first")
	second := testutil.CreateMessage(t, f.db, fb, f.bob, "second")
	require.NoError(t, f.db.Create(&entity.FeedbackParticipant{FeedbackID: fb.ID, UserID: f.alice.ID}).Error)
	require.NoError(t, f.db.Create(&entity.FeedbackParticipant{FeedbackID: fb.ID, UserID: f.bob.ID}).Error)

	_, err := f.votes.ToggleVote(ctx, f.bob.ID, first.ID, entity.VoteUp)
	require.NoError(t, err)
	_, err = f.votes.ToggleVote(ctx, f.alice.ID, second.ID, entity.VoteDown)
	require.NoError(t, err)

	thread, err := f.svc.GetThread(ctx, f.bob.ID, fb.ID)
	require.NoError(t, err)

	assert.Equal(t, "Thread", thread.Feedback.Title)
	assert.Equal(t, "Databases", thread.Feedback.Subject.Name)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, first.ID, thread.Messages[0].ID)
	assert.Equal(t, int64(1), thread.Messages[0].Score)
	require.NotNil(t, thread.Messages[0].UserVote)
	assert.Equal(t, entity.VoteUp, *thread.Messages[0].UserVote)
	assert.Equal(t, int64(-1), thread.Messages[1].Score)
	assert.Nil(t, thread.Messages[1].UserVote, "bob did not vote on his own message")
	assert.Len(t, thread.Participants, 2)

	anon, err := f.svc.GetThread(ctx, uuid.Nil, fb.ID)
	require.NoError(t, err)
	assert.Nil(t, anon.Messages[0].UserVote)

	_, err = f.svc.GetThread(ctx, f.bob.ID, uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeleteFeedback(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	fb := testutil.CreateFeedback(t, f.db, &entity.Feedback{SubjectCode: &f.subject.Code, AuthorID: &f.alice.ID})
	msg := testutil.CreateMessage(t, f.db, fb, f.bob, "reply")
	_, err := f.votes.ToggleVote(ctx, f.alice.ID, msg.ID, entity.VoteUp)
	require.NoError(t, err)

	err = f.svc.DeleteFeedback(ctx, f.bob.ID, fb.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	err = f.svc.DeleteFeedback(ctx, uuid.Nil, fb.ID)
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	require.NoError(t, f.svc.DeleteFeedback(ctx, f.alice.ID, fb.ID))
	assert.Equal(t, []string{fb.ID.String()}, f.indexer.Deleted)

	var messages, votes int64
	require.NoError(t, f.db.Model(&entity.Message{}).Count(&messages).Error)
	require.NoError(t, f.db.Model(&entity.Vote{}).Count(&votes).Error)
	assert.Zero(t, messages)
	assert.Zero(t, votes)

	err = f.svc.DeleteFeedback(ctx, f.alice.ID, fb.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeleteFeedbackByStaff(t *testing.T) {
	f := setup(t)

	fb := testutil.CreateFeedback(t, f.db, &entity.Feedback{TeacherID: &f.teacher.ID, AuthorID: &f.alice.ID})
	require.NoError(t, f.svc.DeleteFeedback(context.Background(), f.staff.ID, fb.ID))

	_, err := f.svc.GetThread(context.Background(), uuid.Nil, fb.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeleteFeedbackDropsCachedScores(t *testing.T) {
	client, srv := testutil.NewRedis(t)
	f := setupWithRedis(t, client)
	ctx := context.Background()

	fb := testutil.CreateFeedback(t, f.db, &entity.Feedback{SubjectCode: &f.subject.Code, AuthorID: &f.alice.ID})
	msg := testutil.CreateMessage(t, f.db, fb, f.bob, "reply")
	_, err := f.votes.ToggleVote(ctx, f.alice.ID, msg.ID, entity.VoteUp)
	require.NoError(t, err)

	key := "votes:message:" + msg.ID.String()
	require.True(t, srv.Exists(key))

	require.NoError(t, f.svc.DeleteFeedback(ctx, f.alice.ID, fb.ID))
	assert.False(t, srv.Exists(key))

	score, err := f.votes.Score(ctx, msg.ID)
	require.NoError(t, err)
	assert.Zero(t, score)
}
