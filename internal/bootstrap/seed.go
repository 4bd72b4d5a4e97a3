package bootstrap

import (
	"errors"

	"anoa.com/feedbackportal/internal/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	seedStaffUsername = "admin"
	seedStaffPassword = "admin123"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Subject{},
		&entity.Teacher{},
		&entity.Feedback{},
		&entity.FeedbackParticipant{},
		&entity.Message{},
		&entity.Vote{},
		&entity.Notification{},
	)
}

// SeedStaffUser creates the development staff account unless a user with
// that username already exists.
func SeedStaffUser(db *gorm.DB, log *zap.Logger) error {
	var existing entity.User
	err := db.Where("username = ?", seedStaffUsername).First(&existing).Error
	if err == nil {
		log.Info("staff user already exists, skipping seed", zap.String("username", seedStaffUsername))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(seedStaffPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	staff := entity.User{
		Username:     seedStaffUsername,
		PasswordHash: string(hashedPasswordBytes),
		IsStaff:      true,
	}
	if err := db.Create(&staff).Error; err != nil {
		return err
	}

	log.Info("staff user seeded",
		zap.String("username", seedStaffUsername),
		zap.String("password", seedStaffPassword),
	)
	return nil
}
