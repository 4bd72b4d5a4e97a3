package testutil

import (
	"testing"

	"anoa.com/feedbackportal/internal/entity"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func CreateUser(t *testing.T, db *gorm.DB, username string, staff bool) *entity.User {
	t.Helper()
	u := &entity.User{Username: username, PasswordHash: "x", IsStaff: staff}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateSubject(t *testing.T, db *gorm.DB, code, name string) *entity.Subject {
	t.Helper()
	s := &entity.Subject{Code: code, Name: name}
	require.NoError(t, db.Create(s).Error)
	return s
}

func CreateTeacher(t *testing.T, db *gorm.DB, name string, email *string) *entity.Teacher {
	t.Helper()
	tc := &entity.Teacher{Name: name, Email: email}
	require.NoError(t, db.Create(tc).Error)
	return tc
}

func CreateFeedback(t *testing.T, db *gorm.DB, f *entity.Feedback) *entity.Feedback {
	t.Helper()
	if f.Body == "" {
		f.Body = "body"
	}
	if f.Title == "" {
		f.Title = "title"
	}
	require.NoError(t, db.Create(f).Error)
	return f
}

func CreateMessage(t *testing.T, db *gorm.DB, feedback *entity.Feedback, author *entity.User, body string) *entity.Message {
	t.Helper()
	m := &entity.Message{FeedbackID: feedback.ID, AuthorID: &author.ID, Body: body}
	require.NoError(t, db.Create(m).Error)
	return m
}

func Ptr[T any](v T) *T { return &v }
