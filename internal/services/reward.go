package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/quickbites/backend/internal/config"
	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/pkg/apperror"
	"github.com/quickbites/backend/pkg/logger"
	"gorm.io/gorm"
)

// RewardSource supplies the random draw so tests can pin exact amounts and
// the seed lands in the audit metadata.
type RewardSource interface {
	Intn(n int) int
}

// RewardService issues the coin reward tied 1:1 to a review and reconciles
// rewards whose wallet credit failed mid-flight.
type RewardService struct {
	db      *gorm.DB
	cfg     *config.Config
	wallets *WalletService
	rng     RewardSource

	Now func() time.Time
}

func NewRewardService(db *gorm.DB, cfg *config.Config, wallets *WalletService) *RewardService {
	return &RewardService{
		db:      db,
		cfg:     cfg,
		wallets: wallets,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:     time.Now,
	}
}

// SetSource swaps the randomness source (tests).
func (s *RewardService) SetSource(src RewardSource) {
	s.rng = src
}

// Draw picks the coin amount for one review, uniform within the configured
// bounds, and mints the seed recorded for fairness audits. Called exactly
// once per review.
func (s *RewardService) Draw() (int, string) {
	span := s.cfg.RewardMaxCoins - s.cfg.RewardMinCoins + 1
	coins := s.cfg.RewardMinCoins + s.rng.Intn(span)
	return coins, uuid.NewString()
}

// Issue persists the reward row. The unique index on review_id rejects a
// second reward for the same review.
func (s *RewardService) Issue(tx *gorm.DB, userID, reviewID uint, coins int, seed, device, ip, status string) (*models.ReviewReward, error) {
	if tx == nil {
		tx = s.db
	}

	now := s.Now()
	reward := models.ReviewReward{
		UserID:            userID,
		ReviewID:          reviewID,
		CoinsAmount:       coins,
		RupeesValue:       coins,
		Status:            status,
		ExpiresAt:         now.Add(s.cfg.RewardExpiry),
		DeviceFingerprint: device,
		IPAddress:         ip,
		RandomSeed:        seed,
	}
	if status == models.RewardStatusCredited {
		reward.CreditedAt = &now
	}

	if err := tx.Create(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.State(apperror.CodeInvalidState, "Reward already issued for this review")
		}
		return nil, err
	}
	return &reward, nil
}

// ReconcilePending retries the wallet credit for rewards stranded in pending
// by a partial submission failure. Run from the cron sweep. Returns how many
// rewards were credited.
func (s *RewardService) ReconcilePending() (int, error) {
	var pending []models.ReviewReward
	if err := s.db.Where("status = ?", models.RewardStatusPending).Find(&pending).Error; err != nil {
		return 0, err
	}

	credited := 0
	for i := range pending {
		reward := &pending[i]
		err := s.db.Transaction(func(tx *gorm.DB) error {
			// Guard on status so two sweeps cannot double-credit.
			res := tx.Model(&models.ReviewReward{}).
				Where("id = ? AND status = ?", reward.ID, models.RewardStatusPending).
				Updates(map[string]interface{}{
					"status":      models.RewardStatusCredited,
					"credited_at": s.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}

			_, err := s.wallets.Credit(tx, reward.UserID, int64(reward.CoinsAmount),
				models.TxTypeReviewReward,
				fmt.Sprintf("Review reward for review #%d", reward.ReviewID),
				fmt.Sprintf("%d", reward.ReviewID))
			if err != nil {
				return err
			}
			credited++
			return nil
		})
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"reward_id": reward.ID,
				"review_id": reward.ReviewID,
				"user_id":   reward.UserID,
				"error":     err.Error(),
			}).Error("reward reconciliation failed")
		}
	}

	return credited, nil
}

// Reverse undoes a credited reward (fraud cleanup). Only legal from
// credited; the wallet is debited by the same amount.
func (s *RewardService) Reverse(rewardID, adminID uint) (*models.ReviewReward, error) {
	var reward models.ReviewReward
	if err := s.db.First(&reward, rewardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Reward")
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ReviewReward{}).
			Where("id = ? AND status = ?", reward.ID, models.RewardStatusCredited).
			Update("status", models.RewardStatusReversed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.State(apperror.CodeInvalidState, "Can only reverse credited rewards")
		}

		if _, err := s.wallets.Debit(tx, reward.UserID, int64(reward.CoinsAmount),
			models.TxTypeDebit,
			fmt.Sprintf("Reward reversed for review #%d", reward.ReviewID),
			fmt.Sprintf("%d", reward.ReviewID)); err != nil {
			return err
		}

		entry := models.ReviewAuditLog{
			ReviewID:        reward.ReviewID,
			ActionType:      models.AuditActionAdminAction,
			PerformedByID:   &adminID,
			PerformedByRole: models.AuditRoleAdmin,
			Details:         fmt.Sprintf(`{"reward_reversed":true,"coins":%d}`, reward.CoinsAmount),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&reward, reward.ID).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

// ListForUser returns the caller's reward history, newest first.
func (s *RewardService) ListForUser(userID uint) ([]models.ReviewReward, error) {
	var rewards []models.ReviewReward
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rewards).Error
	return rewards, err
}
