package search_test

import (
	"context"
	"errors"
	"testing"

	"anoa.com/feedbackportal/internal/entity"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	messageRepo "anoa.com/feedbackportal/internal/modules/message/repository"
	searchDto "anoa.com/feedbackportal/internal/modules/search/dto"
	search "anoa.com/feedbackportal/internal/modules/search/service"
	subjectRepo "anoa.com/feedbackportal/internal/modules/subject/repository"
	teacherRepo "anoa.com/feedbackportal/internal/modules/teacher/repository"
	"anoa.com/feedbackportal/internal/testutil"
	"anoa.com/feedbackportal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T, indexer search.FeedbackIndexer) (search.SearchService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := search.NewSearchService(
		feedbackRepo.NewFeedbackRepository(db),
		subjectRepo.NewSubjectRepository(db),
		teacherRepo.NewTeacherRepository(db),
		messageRepo.NewMessageRepository(db),
		indexer,
		zap.NewNop(),
	)
	return svc, db
}

func TestHome(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", false)
	databases := testutil.CreateSubject(t, db, "INF1343", "Databases")
	testutil.CreateSubject(t, db, "MAT0001", "Calculus")
	smith := testutil.CreateTeacher(t, db, "Dr. Smith", nil)
	testutil.CreateTeacher(t, db, "Prof. Data", nil)

	fb := testutil.CreateFeedback(t, db, &entity.Feedback{SubjectCode: &databases.Code, TeacherID: &smith.ID, AuthorID: &alice.ID, Title: "Intro to data"})
	testutil.CreateFeedback(t, db, &entity.Feedback{TeacherID: &smith.ID, Title: "Office hours", Body: "helpful"})
	testutil.CreateMessage(t, db, fb, alice, "agreed")

	res, err := svc.Home(ctx, "  data ")
	require.NoError(t, err)
	assert.Equal(t, "data", res.Query)
	require.Len(t, res.Feedbacks, 1)
	assert.Equal(t, "Intro to data", res.Feedbacks[0].Title)
	require.Len(t, res.Subjects, 1)
	assert.Equal(t, "INF1343", res.Subjects[0].Code)
	require.Len(t, res.Teachers, 1)
	assert.Equal(t, "Prof. Data", res.Teachers[0].Name)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "agreed", res.Messages[0].Body)
	assert.Equal(t, "Intro to data", res.Messages[0].FeedbackTitle)

	all, err := svc.Home(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all.Feedbacks, 2)
	assert.Len(t, all.Subjects, 2)
	assert.Len(t, all.Teachers, 2)
}

func TestFullTextDisabled(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.FullText(context.Background(), searchDto.SearchQuery{Q: "x"})
	assert.True(t, errors.Is(err, apperror.ErrUnavailable))
	assert.Equal(t, 503, apperror.MapErrorToStatus(err))

	n, err := svc.Reindex(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReindex(t *testing.T) {
	indexer := testutil.NewRecordingIndexer()
	svc, db := newService(t, indexer)

	teacher := testutil.CreateTeacher(t, db, "Dr. Smith", nil)
	for i := 0; i < 3; i++ {
		testutil.CreateFeedback(t, db, &entity.Feedback{TeacherID: &teacher.ID, Title: "Lectures"})
	}

	n, err := svc.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, indexer.Clears)
	assert.Equal(t, 3, indexer.Len())

	hits, err := svc.FullText(context.Background(), searchDto.SearchQuery{Q: "lect"})
	require.NoError(t, err)
	assert.Len(t, hits.Hits, 3)
}

func TestReindexJob(t *testing.T) {
	indexer := testutil.NewRecordingIndexer()
	svc, db := newService(t, indexer)

	teacher := testutil.CreateTeacher(t, db, "Dr. Smith", nil)
	testutil.CreateFeedback(t, db, &entity.Feedback{TeacherID: &teacher.ID})

	job := search.NewReindexJob(svc, "@every 1h")
	assert.Equal(t, "search-reindex", job.Name())
	assert.Equal(t, "@every 1h", job.Schedule())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, indexer.Len())
}
