package database

import (
	"github.com/quickbites/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Init(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Surfaces unique-constraint violations as gorm.ErrDuplicatedKey so
		// services can translate races into state errors.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs AutoMigrate for every entity. Shared with the test harness,
// which opens sqlite instead of postgres.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Restaurant{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.ReviewReport{},
		&models.ReviewFeedback{},
		&models.ReviewerProfile{},
		&models.ReviewReward{},
		&models.ReviewAuditLog{},
		&models.Wallet{},
		&models.WalletTransaction{},
	)
}
