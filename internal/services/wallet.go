package services

import (
	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/pkg/apperror"
	"gorm.io/gorm"
)

// WalletService owns the per-user ledger. Balance and the earned/spent totals
// move together in single atomic UPDATEs, so balance = earned - spent holds
// by construction and lost updates under concurrent credits cannot happen.
type WalletService struct {
	db *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// GetOrCreate returns the caller's wallet, creating an empty one on first
// access. The unique index on user_id makes the create race-safe.
func (s *WalletService) GetOrCreate(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.Where(models.Wallet{UserID: userID}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Credit adds funds and records a transaction row. Runs inside the caller's
// transaction when one is passed.
func (s *WalletService) Credit(tx *gorm.DB, userID uint, amount int64, txType, description, referenceID string) (*models.Wallet, error) {
	if tx == nil {
		tx = s.db
	}
	if amount <= 0 {
		return nil, apperror.BadRequest("Invalid amount")
	}

	var wallet models.Wallet
	if err := tx.Where(models.Wallet{UserID: userID}).FirstOrCreate(&wallet).Error; err != nil {
		return nil, err
	}

	err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", amount),
		}).Error
	if err != nil {
		return nil, err
	}

	record := models.WalletTransaction{
		WalletID:    wallet.ID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		ReferenceID: referenceID,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}

	if err := tx.First(&wallet, wallet.ID).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Debit removes funds. The guard clause rejects the update when the balance
// would go negative; zero rows affected means insufficient funds.
func (s *WalletService) Debit(tx *gorm.DB, userID uint, amount int64, txType, description, referenceID string) (*models.Wallet, error) {
	if tx == nil {
		tx = s.db
	}
	if amount <= 0 {
		return nil, apperror.BadRequest("Invalid amount")
	}

	var wallet models.Wallet
	if err := tx.Where(models.Wallet{UserID: userID}).FirstOrCreate(&wallet).Error; err != nil {
		return nil, err
	}

	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", wallet.ID, amount).
		Updates(map[string]interface{}{
			"balance":     gorm.Expr("balance - ?", amount),
			"total_spent": gorm.Expr("total_spent + ?", amount),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperror.State(apperror.CodeInvalidState, "Insufficient wallet balance")
	}

	record := models.WalletTransaction{
		WalletID:    wallet.ID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		ReferenceID: referenceID,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}

	if err := tx.First(&wallet, wallet.ID).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Transactions returns the caller's ledger entries, newest first.
func (s *WalletService) Transactions(userID uint, limit int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	wallet, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var records []models.WalletTransaction
	err = s.db.Where("wallet_id = ?", wallet.ID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
