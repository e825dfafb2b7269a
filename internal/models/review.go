package models

import "time"

const (
	SentimentThumbsUp   = "thumbs_up"
	SentimentThumbsDown = "thumbs_down"
)

const (
	ReviewStatusActive  = "active"
	ReviewStatusHidden  = "hidden"
	ReviewStatusFlagged = "flagged"
	ReviewStatusDeleted = "deleted"
)

// Review labels are informational metadata, never gating.
const (
	LabelVerifiedOrder     = "verified_order"
	LabelFirstReview       = "first_review"
	LabelFrequentCustomer  = "frequent_customer"
	LabelTrustedReviewer   = "trusted_reviewer"
	LabelHighValueCustomer = "high_value_customer"
	LabelLowConfidence     = "low_confidence"
)

type Review struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	UserID       uint `json:"user_id" gorm:"not null;index:idx_reviews_user_created"`
	RestaurantID uint `json:"restaurant_id" gorm:"not null;index:idx_reviews_restaurant_status"`
	// One review per order, enforced by the storage layer so concurrent
	// submissions get exactly one winner.
	OrderID uint `json:"order_id" gorm:"not null;uniqueIndex"`

	EmojiSentiment    string   `json:"emoji_sentiment" gorm:"not null"`
	Rating            int      `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	FoodQualityRating int      `json:"food_quality_rating" gorm:"not null;check:food_quality_rating >= 1 AND food_quality_rating <= 5"`
	DeliveryRating    int      `json:"delivery_rating" gorm:"not null;check:delivery_rating >= 1 AND delivery_rating <= 5"`
	ReviewText        string   `json:"review_text" gorm:"not null"`
	Photos            []string `json:"photos" gorm:"serializer:json"`

	TrustScore int      `json:"trust_score" gorm:"default:50;check:trust_score >= 0 AND trust_score <= 100"`
	Labels     []string `json:"labels" gorm:"serializer:json"`

	Status          string `json:"status" gorm:"default:active;index:idx_reviews_restaurant_status"`
	ModerationNotes string `json:"moderation_notes,omitempty"`

	HelpfulCount    int            `json:"helpful_count" gorm:"default:0"`
	NotHelpfulCount int            `json:"not_helpful_count" gorm:"default:0"`
	ReportCount     int            `json:"report_count" gorm:"default:0"`
	Reports         []ReviewReport `json:"reports,omitempty" gorm:"foreignKey:ReviewID"`

	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
	IPAddress         string `json:"ip_address,omitempty"`

	ResponseText string     `json:"response_text,omitempty"`
	RespondedBy  *uint      `json:"responded_by,omitempty"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`

	Edited      bool        `json:"edited" gorm:"default:false"`
	EditHistory []EditEntry `json:"edit_history,omitempty" gorm:"serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EditEntry struct {
	PreviousText string    `json:"previous_text"`
	EditedAt     time.Time `json:"edited_at"`
}

// ReviewReport is one user's report against a review. The composite unique
// index keeps a reporter from reporting the same review twice.
type ReviewReport struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ReviewID  uint      `json:"review_id" gorm:"not null;uniqueIndex:idx_report_review_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_report_review_user"`
	Reason    string    `json:"reason" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	FeedbackHelpful    = "helpful"
	FeedbackNotHelpful = "not_helpful"
)

// ReviewFeedback records a helpful / not-helpful vote. At most one per
// (review, user), enforced at the storage layer.
type ReviewFeedback struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	ReviewID          uint      `json:"review_id" gorm:"not null;uniqueIndex:idx_feedback_review_user"`
	UserID            uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_feedback_review_user"`
	FeedbackType      string    `json:"feedback_type" gorm:"not null"`
	DeviceFingerprint string    `json:"device_fingerprint,omitempty"`
	IPAddress         string    `json:"ip_address,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
