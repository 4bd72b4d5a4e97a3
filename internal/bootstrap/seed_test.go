package bootstrap_test

import (
	"testing"

	"anoa.com/feedbackportal/internal/bootstrap"
	"anoa.com/feedbackportal/internal/entity"
	"anoa.com/feedbackportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedStaffUserIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, bootstrap.SeedStaffUser(db, zap.NewNop()))
	require.NoError(t, bootstrap.SeedStaffUser(db, zap.NewNop()))

	var users []entity.User
	require.NoError(t, db.Where("username = ?", "admin").Find(&users).Error)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsStaff)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("admin123")))
}
