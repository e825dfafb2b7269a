package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/quickbites/backend/internal/config"
	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/pkg/apperror"
	"gorm.io/gorm"
)

// EligibilityResult is the gate's verdict. Reason carries a stable code when
// Eligible is false.
type EligibilityResult struct {
	Eligible         bool       `json:"eligible"`
	Reason           string     `json:"reason,omitempty"`
	Message          string     `json:"message"`
	SecondsRemaining int64      `json:"seconds_remaining,omitempty"`
	BanExpiresAt     *time.Time `json:"ban_expires_at,omitempty"`
	RewardRange      string     `json:"reward_range,omitempty"`
}

// EligibilityService checks whether an (order, user) pair may submit a
// review. Checks run in a fixed order and short-circuit on first failure.
// The only side effect is the ban-expiry auto-clear, which is persisted
// before returning.
type EligibilityService struct {
	db  *gorm.DB
	cfg *config.Config

	Now func() time.Time
}

func NewEligibilityService(db *gorm.DB, cfg *config.Config) *EligibilityService {
	return &EligibilityService{db: db, cfg: cfg, Now: time.Now}
}

func (s *EligibilityService) Check(orderID, callerID uint) (*EligibilityResult, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Order")
		}
		return nil, err
	}

	if order.UserID != callerID {
		return nil, apperror.Forbidden("Not your order")
	}

	var count int64
	if err := s.db.Model(&models.Review{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return &EligibilityResult{
			Eligible: false,
			Reason:   apperror.CodeAlreadyReviewed,
			Message:  "You have already reviewed this order",
		}, nil
	}

	if order.Status != models.OrderStatusDelivered {
		return &EligibilityResult{
			Eligible: false,
			Reason:   apperror.CodeNotDelivered,
			Message:  "Order must be delivered first",
		}, nil
	}

	now := s.Now()
	reviewableAt := order.DeliveredTime().Add(s.cfg.ReviewCooldown)
	if now.Before(reviewableAt) {
		remaining := int64(math.Ceil(reviewableAt.Sub(now).Seconds()))
		return &EligibilityResult{
			Eligible:         false,
			Reason:           apperror.CodeTooSoon,
			Message:          fmt.Sprintf("Please wait %d more seconds after delivery", remaining),
			SecondsRemaining: remaining,
		}, nil
	}

	var profile models.ReviewerProfile
	err := s.db.Where("user_id = ?", callerID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil && profile.IsBanned {
		if profile.BanActive(now) {
			return &EligibilityResult{
				Eligible:     false,
				Reason:       apperror.CodeBanned,
				Message:      "Your review privileges are temporarily suspended",
				BanExpiresAt: profile.BanExpiresAt,
			}, nil
		}
		// Ban has lapsed: clear it now so later reads see the unban.
		profile.ClearBan()
		if err := s.db.Save(&profile).Error; err != nil {
			return nil, err
		}
	}

	var user models.User
	if err := s.db.First(&user, callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User")
		}
		return nil, err
	}
	if !user.IsVerified {
		return &EligibilityResult{
			Eligible: false,
			Reason:   apperror.CodeNotVerified,
			Message:  "Please verify your mobile number to submit reviews",
		}, nil
	}

	return &EligibilityResult{
		Eligible: true,
		Message:  "You can review this order",
		RewardRange: fmt.Sprintf("%d-%d coins (₹%d-₹%d)",
			s.cfg.RewardMinCoins, s.cfg.RewardMaxCoins,
			s.cfg.RewardMinCoins, s.cfg.RewardMaxCoins),
	}, nil
}
