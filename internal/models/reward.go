package models

import "time"

const (
	RewardStatusPending  = "pending"
	RewardStatusCredited = "credited"
	RewardStatusFailed   = "failed"
	RewardStatusReversed = "reversed"
)

// ReviewReward is the coin reward issued for one accepted review. The amount
// is drawn once at submission and never regenerated; the unique index on
// review_id guarantees at most one reward per review even under races.
type ReviewReward struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	UserID   uint `json:"user_id" gorm:"not null;index"`
	ReviewID uint `json:"review_id" gorm:"not null;uniqueIndex"`

	CoinsAmount int `json:"coins_amount" gorm:"not null;check:coins_amount >= 1 AND coins_amount <= 100"`
	// 1 coin = 1 rupee
	RupeesValue int `json:"rupees_value" gorm:"not null"`

	Status     string     `json:"status" gorm:"default:pending;index"`
	CreditedAt *time.Time `json:"credited_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"index"`

	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
	IPAddress         string `json:"ip_address,omitempty"`
	// RandomSeed identifies the draw for fairness audits.
	RandomSeed string `json:"random_seed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
