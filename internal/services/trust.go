package services

import (
	"math"
	"strings"
	"time"

	"github.com/quickbites/backend/internal/models"
)

// CalculateTrustScore scores how likely a review is genuine on a 0-100 scale.
// Base 50, plus capped contributions from account age, order history, running
// trust average, verified contact channels, and review length. Reads the
// profile but never mutates it.
func CalculateTrustScore(profile *models.ReviewerProfile, reviewText string, now time.Time) int {
	score := 50.0

	if profile != nil {
		score += math.Min(float64(profile.AccountAgeDays(now))/10, 15)

		if profile.TotalOrders > 0 {
			score += math.Min(float64(profile.TotalOrders)*2, 15)
		}

		if profile.AvgTrustScore > 50 {
			score += math.Min((profile.AvgTrustScore-50)/5, 10)
		}

		if profile.VerifiedMobile {
			score += 5
		}
		if profile.VerifiedEmail {
			score += 5
		}
	}

	wordCount := len(strings.Fields(reviewText))
	if wordCount >= 50 {
		score += 10
	} else if wordCount >= 30 {
		score += 5
	}

	rounded := int(math.Round(score))
	if rounded > 100 {
		return 100
	}
	if rounded < 0 {
		return 0
	}
	return rounded
}

// AssignReviewLabels derives the informational label set for a review. Every
// review carries verified_order since submission is gated on a delivered
// order. Labels never gate anything.
func AssignReviewLabels(profile *models.ReviewerProfile, isFirstReview bool, trustScore int) []string {
	labels := []string{models.LabelVerifiedOrder}

	if isFirstReview {
		labels = append(labels, models.LabelFirstReview)
	}
	if profile != nil {
		if profile.TotalReviews >= 10 {
			labels = append(labels, models.LabelFrequentCustomer)
		}
		if profile.IsTrustedLevel() {
			labels = append(labels, models.LabelTrustedReviewer)
		}
		if profile.TotalOrders >= 20 {
			labels = append(labels, models.LabelHighValueCustomer)
		}
	}
	if trustScore < 40 {
		labels = append(labels, models.LabelLowConfidence)
	}

	return labels
}
