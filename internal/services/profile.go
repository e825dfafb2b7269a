package services

import (
	"errors"
	"time"

	"github.com/quickbites/backend/internal/config"
	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/pkg/apperror"
	"gorm.io/gorm"
)

// ProfileService owns reviewer reputation state: lazy creation, point and
// level bookkeeping, device/IP history, and ban state.
type ProfileService struct {
	db  *gorm.DB
	cfg *config.Config

	Now func() time.Time
}

func NewProfileService(db *gorm.DB, cfg *config.Config) *ProfileService {
	return &ProfileService{db: db, cfg: cfg, Now: time.Now}
}

// GetOrCreate returns the user's profile, creating one with default state
// (bronze, zero counters) on first access.
func (s *ProfileService) GetOrCreate(userID uint) (*models.ReviewerProfile, error) {
	var profile models.ReviewerProfile
	err := s.db.Where(models.ReviewerProfile{UserID: userID}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// EnsureForSubmission returns the profile for a submitting reviewer, seeding
// verified flags from the user record and total_orders = 1 when the profile
// does not exist yet.
func (s *ProfileService) EnsureForSubmission(user *models.User) (*models.ReviewerProfile, error) {
	var profile models.ReviewerProfile
	err := s.db.Where("user_id = ?", user.ID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.ReviewerProfile{
		UserID:         user.ID,
		VerifiedMobile: user.Phone != "",
		VerifiedEmail:  user.Email != "",
		TotalOrders:    1,
		AvgTrustScore:  50,
		ReviewerLevel:  models.LevelBronze,
	}
	if err := s.db.Create(&profile).Error; err != nil {
		// Lost a creation race; the existing row wins.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if ferr := s.db.Where("user_id = ?", user.ID).First(&profile).Error; ferr == nil {
				return &profile, nil
			}
		}
		return nil, err
	}
	return &profile, nil
}

// Get returns the profile without creating it.
func (s *ProfileService) Get(userID uint) (*models.ReviewerProfile, error) {
	var profile models.ReviewerProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Reviewer profile")
		}
		return nil, err
	}
	return &profile, nil
}

// Save persists the full profile row (counters, rings, level).
func (s *ProfileService) Save(tx *gorm.DB, profile *models.ReviewerProfile) error {
	if tx == nil {
		tx = s.db
	}
	return tx.Save(profile).Error
}

// ApplyPenalty subtracts points, bumps the flagged/warning counters and
// recomputes the level. When the warning count reaches the auto-ban limit the
// reviewer is banned for the configured duration. Returns whether a ban
// resulted. Runs inside the caller's transaction.
func (s *ProfileService) ApplyPenalty(tx *gorm.DB, userID uint, points int) (bool, error) {
	if tx == nil {
		tx = s.db
	}

	var profile models.ReviewerProfile
	if err := tx.Where(models.ReviewerProfile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		return false, err
	}

	profile.FlaggedReviews++
	profile.WarningCount++
	profile.AddPoints(-points)

	banned := false
	if profile.WarningCount >= s.cfg.AutoBanWarningLimit && !profile.IsBanned {
		expires := s.Now().Add(s.cfg.AutoBanDuration)
		profile.IsBanned = true
		profile.BanReason = "Multiple fake/inappropriate reviews"
		profile.BanExpiresAt = &expires
		banned = true
	}

	return banned, tx.Save(&profile).Error
}

// Ban suspends a reviewer's review privileges until the expiry time.
func (s *ProfileService) Ban(userID uint, reason string, expiresAt time.Time) (*models.ReviewerProfile, error) {
	var profile models.ReviewerProfile
	if err := s.db.Where(models.ReviewerProfile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		return nil, err
	}

	profile.IsBanned = true
	profile.BanReason = reason
	profile.BanExpiresAt = &expiresAt
	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Unban clears all ban fields.
func (s *ProfileService) Unban(userID uint) (*models.ReviewerProfile, error) {
	var profile models.ReviewerProfile
	if err := s.db.Where(models.ReviewerProfile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		return nil, err
	}

	profile.ClearBan()
	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
