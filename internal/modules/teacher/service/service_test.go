package teacher_test

import (
	"context"
	"errors"
	"testing"

	"anoa.com/feedbackportal/internal/entity"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	teacherDto "anoa.com/feedbackportal/internal/modules/teacher/dto"
	teacherRepo "anoa.com/feedbackportal/internal/modules/teacher/repository"
	teacher "anoa.com/feedbackportal/internal/modules/teacher/service"
	"anoa.com/feedbackportal/internal/testutil"
	"anoa.com/feedbackportal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (teacher.TeacherService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := teacher.NewTeacherService(teacherRepo.NewTeacherRepository(db), feedbackRepo.NewFeedbackRepository(db), zap.NewNop())
	return svc, db
}

func TestCreateTeacher(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	actor := uuid.New()

	res, err := svc.CreateTeacher(ctx, actor, teacherDto.CreateTeacherRequest{Name: "Dr. Smith", Email: testutil.Ptr("Smith@Uni.edu")})
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	require.NotNil(t, res.Email)
	assert.Equal(t, "smith@uni.edu", *res.Email)

	_, err = svc.CreateTeacher(ctx, actor, teacherDto.CreateTeacherRequest{Name: "Imposter", Email: testutil.Ptr("SMITH@uni.edu")})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateTeacherEmail))
	assert.Equal(t, "duplicate_teacher_email", apperror.Kind(err))

	// Teachers without an email never collide.
	_, err = svc.CreateTeacher(ctx, actor, teacherDto.CreateTeacherRequest{Name: "Dr. Jones"})
	require.NoError(t, err)
	_, err = svc.CreateTeacher(ctx, actor, teacherDto.CreateTeacherRequest{Name: "Dr. Brown", Email: testutil.Ptr("  ")})
	require.NoError(t, err)
}

func TestCreateTeacherRequiresActor(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.CreateTeacher(context.Background(), uuid.Nil, teacherDto.CreateTeacherRequest{Name: "Dr. Smith"})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	_, err = svc.CreateTeacher(context.Background(), uuid.New(), teacherDto.CreateTeacherRequest{Name: " "})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestGetProfile(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	smith := testutil.CreateTeacher(t, db, "Dr. Smith", nil)
	databases := testutil.CreateSubject(t, db, "INF1343", "Databases")
	networks := testutil.CreateSubject(t, db, "INF2000", "Networks")
	testutil.CreateFeedback(t, db, &entity.Feedback{TeacherID: &smith.ID, SubjectCode: &databases.Code, Stars: testutil.Ptr(5.0)})
	testutil.CreateFeedback(t, db, &entity.Feedback{TeacherID: &smith.ID, SubjectCode: &networks.Code, Stars: testutil.Ptr(5.0)})
	testutil.CreateFeedback(t, db, &entity.Feedback{TeacherID: &smith.ID, Stars: testutil.Ptr(4.0)})

	profile, err := svc.GetProfile(ctx, smith.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Smith", profile.Name)
	require.NotNil(t, profile.Average)
	assert.InDelta(t, 4.67, *profile.Average, 1e-9)
	assert.Equal(t, []string{"Databases", "Networks"}, profile.Subjects)
	assert.Len(t, profile.Feedbacks, 3)

	_, err = svc.GetProfile(ctx, 9999)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListTeachers(t *testing.T) {
	svc, db := setup(t)

	testutil.CreateTeacher(t, db, "Dr. Smith", nil)
	testutil.CreateTeacher(t, db, "Prof. Adams", nil)

	all, err := svc.ListTeachers(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Dr. Smith", all[0].Name)

	filtered, err := svc.ListTeachers(context.Background(), "ADAMS")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Prof. Adams", filtered[0].Name)
}
