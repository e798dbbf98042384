package bootstrap

import (
	"log"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.Assignment{},
		&model.Submission{},
		&model.SubmissionFile{},
		&model.Grade{},
		&model.Announcement{},
		&model.Notification{},
	)
}

// SeedAdminUser inserts a development admin account if none exists.
// Only called for development environments.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@conceptspro.dev").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Email:        "admin@conceptspro.dev",
		PasswordHash: string(hashedPasswordBytes),
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("Seeded development admin user")
	return nil
}
