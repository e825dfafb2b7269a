package services

import (
	"strings"
	"testing"
	"time"

	"github.com/quickbites/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("tasty ", n))
}

func TestCalculateTrustScoreNewReviewer(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	profile := &models.ReviewerProfile{
		TotalOrders:    1,
		AvgTrustScore:  50,
		VerifiedMobile: true,
		VerifiedEmail:  true,
		CreatedAt:      now,
	}

	// base 50 + orders 2 + mobile 5 + email 5, short text adds nothing
	score := CalculateTrustScore(profile, "Good food", now)
	assert.Equal(t, 62, score)
}

func TestCalculateTrustScoreCapsAndClamp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	profile := &models.ReviewerProfile{
		TotalOrders:    25,
		AvgTrustScore:  85,
		VerifiedMobile: true,
		VerifiedEmail:  true,
		CreatedAt:      now.AddDate(0, 0, -200),
	}

	// age capped at 15, orders capped at 15, avg bonus 7, verified 10,
	// length 10: raw 107 clamps to 100
	score := CalculateTrustScore(profile, words(50), now)
	assert.Equal(t, 100, score)
}

func TestCalculateTrustScoreNilProfile(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 50, CalculateTrustScore(nil, "short", now))
}

func TestCalculateTrustScoreLengthBonuses(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profile := &models.ReviewerProfile{CreatedAt: now, AvgTrustScore: 50}

	assert.Equal(t, 50, CalculateTrustScore(profile, words(29), now))
	assert.Equal(t, 55, CalculateTrustScore(profile, words(30), now))
	assert.Equal(t, 55, CalculateTrustScore(profile, words(49), now))
	assert.Equal(t, 60, CalculateTrustScore(profile, words(50), now))
}

func TestCalculateTrustScoreAvgBonusOnlyAboveFifty(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	below := &models.ReviewerProfile{CreatedAt: now, AvgTrustScore: 40}
	at := &models.ReviewerProfile{CreatedAt: now, AvgTrustScore: 50}
	above := &models.ReviewerProfile{CreatedAt: now, AvgTrustScore: 60}

	assert.Equal(t, 50, CalculateTrustScore(below, "ok", now))
	assert.Equal(t, 50, CalculateTrustScore(at, "ok", now))
	assert.Equal(t, 52, CalculateTrustScore(above, "ok", now))
}

func TestAssignReviewLabels(t *testing.T) {
	profile := &models.ReviewerProfile{
		TotalReviews:  12,
		TotalOrders:   22,
		ReviewerLevel: models.LevelGold,
	}

	labels := AssignReviewLabels(profile, false, 80)
	assert.Equal(t, []string{
		models.LabelVerifiedOrder,
		models.LabelFrequentCustomer,
		models.LabelTrustedReviewer,
		models.LabelHighValueCustomer,
	}, labels)
}

func TestAssignReviewLabelsFirstReviewAndLowConfidence(t *testing.T) {
	profile := &models.ReviewerProfile{ReviewerLevel: models.LevelBronze}

	labels := AssignReviewLabels(profile, true, 35)
	assert.Equal(t, []string{
		models.LabelVerifiedOrder,
		models.LabelFirstReview,
		models.LabelLowConfidence,
	}, labels)
}

func TestAssignReviewLabelsAlwaysVerifiedOrder(t *testing.T) {
	labels := AssignReviewLabels(nil, false, 75)
	assert.Equal(t, []string{models.LabelVerifiedOrder}, labels)
}
