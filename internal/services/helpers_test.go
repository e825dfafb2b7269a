package services

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/quickbites/backend/internal/config"
	"github.com/quickbites/backend/internal/database"
	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// setupTestDB opens a private in-memory database per test. Max one open
// connection, otherwise each pooled connection would see its own empty DB.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		ReviewCooldown:       time.Minute,
		ReviewMinBodyChars:   0,
		ReviewMaxBodyChars:   2000,
		ReportThreshold:      3,
		ReportMinReasonChars: 10,
		HideMinReasonChars:   10,
		DeleteMinReasonChars: 20,
		BanMinReasonChars:    20,
		AutoBanWarningLimit:  3,
		AutoBanDuration:      90 * 24 * time.Hour,
		RewardMinCoins:       1,
		RewardMaxCoins:       100,
		RewardExpiry:         90 * 24 * time.Hour,
		DeviceHistoryLimit:   10,
	}
}

// fixedSource pins the reward draw for deterministic tests.
type fixedSource struct{ value int }

func (f fixedSource) Intn(n int) int {
	if f.value >= n {
		return n - 1
	}
	return f.value
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, verified bool) *models.User {
	t.Helper()
	userSeq++

	user := models.User{
		Name:       fmt.Sprintf("User %d", userSeq),
		Email:      fmt.Sprintf("user%d@example.com", userSeq),
		Password:   "password123",
		Phone:      fmt.Sprintf("98%08d", userSeq),
		Role:       models.RoleCustomer,
		IsVerified: verified,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createRestaurantWithMenu(t *testing.T, db *gorm.DB) (*models.Restaurant, *models.Menu) {
	t.Helper()

	restaurant := models.Restaurant{Name: "Spice Garden", Cuisine: "Indian", IsActive: true}
	require.NoError(t, db.Create(&restaurant).Error)

	menu := models.Menu{
		RestaurantID: restaurant.ID,
		Name:         "Paneer Tikka",
		Price:        250,
		Available:    true,
	}
	require.NoError(t, db.Create(&menu).Error)

	return &restaurant, &menu
}

func createDeliveredOrder(t *testing.T, db *gorm.DB, userID uint, menu *models.Menu, deliveredAt time.Time) *models.Order {
	t.Helper()

	order := models.Order{
		UserID:      userID,
		Status:      models.OrderStatusDelivered,
		Total:       menu.Price,
		DeliveredAt: &deliveredAt,
		Items: []models.OrderItem{
			{MenuID: menu.ID, Name: menu.Name, Price: menu.Price, Quantity: 1},
		},
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

// newPipeline wires the full submission stack against one database with a
// frozen clock and a pinned reward draw.
type pipeline struct {
	db          *gorm.DB
	cfg         *config.Config
	wallets     *WalletService
	profiles    *ProfileService
	audit       *AuditService
	rewards     *RewardService
	reviews     *ReviewService
	eligibility *EligibilityService
	moderation  *ModerationService
}

func newPipeline(t *testing.T, now time.Time, rewardCoins int) *pipeline {
	t.Helper()

	db := setupTestDB(t)
	cfg := testConfig()

	wallets := NewWalletService(db)
	profiles := NewProfileService(db, cfg)
	profiles.Now = func() time.Time { return now }
	audit := NewAuditService(db)

	rewards := NewRewardService(db, cfg, wallets)
	rewards.Now = func() time.Time { return now }
	rewards.SetSource(fixedSource{value: rewardCoins - cfg.RewardMinCoins})

	reviews := NewReviewService(db, cfg, wallets, profiles, rewards, audit)
	reviews.Now = func() time.Time { return now }

	eligibility := NewEligibilityService(db, cfg)
	eligibility.Now = func() time.Time { return now }

	moderation := NewModerationService(db, cfg, profiles, audit, nil)
	moderation.Now = func() time.Time { return now }

	return &pipeline{
		db:          db,
		cfg:         cfg,
		wallets:     wallets,
		profiles:    profiles,
		audit:       audit,
		rewards:     rewards,
		reviews:     reviews,
		eligibility: eligibility,
		moderation:  moderation,
	}
}

func submitRequest(orderID uint) SubmitReviewRequest {
	return SubmitReviewRequest{
		OrderID:           orderID,
		EmojiSentiment:    models.SentimentThumbsUp,
		Rating:            5,
		FoodQualityRating: 4,
		DeliveryRating:    5,
		ReviewText:        "The paneer tikka was fresh and the delivery was quick.",
	}
}
