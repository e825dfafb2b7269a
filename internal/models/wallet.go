package models

import "time"

const (
	TxTypeCredit       = "credit"
	TxTypeDebit        = "debit"
	TxTypeReviewReward = "review_reward"
	TxTypeOrderPayment = "order_payment"
	TxTypeWithdrawal   = "withdrawal"
)

// Wallet keeps a running balance per user. Balance equals total earned minus
// total spent by construction: every mutation goes through the wallet service,
// which updates both sides in the same statement. Balance never goes negative.
type Wallet struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	UserID      uint                `json:"user_id" gorm:"not null;uniqueIndex"`
	Balance     int64               `json:"balance" gorm:"default:0;check:balance >= 0"`
	TotalEarned int64               `json:"total_earned" gorm:"default:0"`
	TotalSpent  int64               `json:"total_spent" gorm:"default:0"`
	Transactions []WalletTransaction `json:"transactions,omitempty" gorm:"foreignKey:WalletID"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type WalletTransaction struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	WalletID    uint      `json:"wallet_id" gorm:"not null;index"`
	Type        string    `json:"type" gorm:"not null"`
	Amount      int64     `json:"amount" gorm:"not null"`
	Description string    `json:"description"`
	ReferenceID string    `json:"reference_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
