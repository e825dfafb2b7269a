package services

import (
	"strings"
	"testing"
	"time"

	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitHappyPath(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 42)
	user := createUser(t, p.db, true)
	restaurant, menu := createRestaurantWithMenu(t, p.db)
	order := createDeliveredOrder(t, p.db, user.ID, menu, now.Add(-2*time.Minute))

	summary, err := p.reviews.Submit(user.ID, submitRequest(order.ID), "device-1", "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, 42, summary.CoinsRewarded)
	assert.Equal(t, models.RewardStatusCredited, summary.RewardStatus)
	assert.EqualValues(t, 42, summary.WalletBalance)
	assert.Contains(t, summary.Labels, models.LabelVerifiedOrder)
	assert.Contains(t, summary.Labels, models.LabelFirstReview)

	var review models.Review
	require.NoError(t, p.db.First(&review, summary.ReviewID).Error)
	assert.Equal(t, restaurant.ID, review.RestaurantID)
	assert.Equal(t, models.ReviewStatusActive, review.Status)
	assert.Equal(t, summary.TrustScore, review.TrustScore)
	assert.Equal(t, "device-1", review.DeviceFingerprint)

	var reward models.ReviewReward
	require.NoError(t, p.db.Where("review_id = ?", review.ID).First(&reward).Error)
	assert.Equal(t, models.RewardStatusCredited, reward.Status)
	assert.Equal(t, 42, reward.CoinsAmount)
	assert.Equal(t, 42, reward.RupeesValue)
	require.NotNil(t, reward.CreditedAt)
	assert.NotEmpty(t, reward.RandomSeed)

	wallet, err := p.wallets.GetOrCreate(user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 42, wallet.Balance)
	assert.EqualValues(t, 42, wallet.TotalEarned)

	txns, err := p.wallets.Transactions(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, models.TxTypeReviewReward, txns[0].Type)

	trail, err := p.audit.ReviewHistory(review.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, models.AuditActionCreated, trail[0].ActionType)
	assert.Equal(t, models.AuditRoleUser, trail[0].PerformedByRole)

	profile, err := p.profiles.Get(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TotalReviews)
	assert.Equal(t, 1, profile.TotalOrders)
	assert.Equal(t, 10, profile.TotalPoints)
	assert.Equal(t, models.LevelBronze, profile.ReviewerLevel)
	assert.Equal(t, 42, profile.TotalCoinsEarned)
	require.Len(t, profile.Devices, 1)
	assert.Equal(t, "device-1", profile.Devices[0].Fingerprint)
}

func TestSubmitPointsForPhotosAndLongBody(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 5)
	user := createUser(t, p.db, true)
	_, menu := createRestaurantWithMenu(t, p.db)
	order := createDeliveredOrder(t, p.db, user.ID, menu, now.Add(-2*time.Minute))

	req := submitRequest(order.ID)
	req.ReviewText = strings.Repeat("Really good food here. ", 10)
	req.Photos = []string{"https://cdn.example.com/p1.jpg"}

	_, err := p.reviews.Submit(user.ID, req, "", "")
	require.NoError(t, err)

	profile, err := p.profiles.Get(user.ID)
	require.NoError(t, err)
	// 10 base, 5 photos, 3 long body
	assert.Equal(t, 18, profile.TotalPoints)
}

func TestSubmitDuplicateOrder(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	user := createUser(t, p.db, true)
	_, menu := createRestaurantWithMenu(t, p.db)
	order := createDeliveredOrder(t, p.db, user.ID, menu, now.Add(-2*time.Minute))

	_, err := p.reviews.Submit(user.ID, submitRequest(order.ID), "", "")
	require.NoError(t, err)

	_, err = p.reviews.Submit(user.ID, submitRequest(order.ID), "", "")
	assert.True(t, apperror.Is(err, apperror.CodeAlreadyReviewed))

	// Only one reward and one wallet credit exist.
	var rewards int64
	require.NoError(t, p.db.Model(&models.ReviewReward{}).Count(&rewards).Error)
	assert.EqualValues(t, 1, rewards)
}

func TestSubmitRejectsUnverifiedAndBanned(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	_, menu := createRestaurantWithMenu(t, p.db)

	unverified := createUser(t, p.db, false)
	order := createDeliveredOrder(t, p.db, unverified.ID, menu, now.Add(-2*time.Minute))
	_, err := p.reviews.Submit(unverified.ID, submitRequest(order.ID), "", "")
	assert.True(t, apperror.Is(err, apperror.CodeNotVerified))

	banned := createUser(t, p.db, true)
	bannedOrder := createDeliveredOrder(t, p.db, banned.ID, menu, now.Add(-2*time.Minute))
	_, err = p.profiles.Ban(banned.ID, "Fraudulent review ring detected", now.Add(24*time.Hour))
	require.NoError(t, err)
	_, err = p.reviews.Submit(banned.ID, submitRequest(bannedOrder.ID), "", "")
	assert.True(t, apperror.Is(err, apperror.CodeBanned))
}

func TestSubmitCooldownEnforced(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	user := createUser(t, p.db, true)
	_, menu := createRestaurantWithMenu(t, p.db)
	order := createDeliveredOrder(t, p.db, user.ID, menu, now.Add(-10*time.Second))

	_, err := p.reviews.Submit(user.ID, submitRequest(order.ID), "", "")
	assert.True(t, apperror.Is(err, apperror.CodeTooSoon))
}

func TestSubmitInvalidSentiment(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	user := createUser(t, p.db, true)
	_, menu := createRestaurantWithMenu(t, p.db)
	order := createDeliveredOrder(t, p.db, user.ID, menu, now.Add(-2*time.Minute))

	req := submitRequest(order.ID)
	req.EmojiSentiment = "meh"
	_, err := p.reviews.Submit(user.ID, req, "", "")
	assert.True(t, apperror.Is(err, apperror.CodeValidation))
}

func TestRewardDrawBounds(t *testing.T) {
	now := time.Now()

	low := newPipeline(t, now, 1)
	coins, seed := low.rewards.Draw()
	assert.Equal(t, 1, coins)
	assert.NotEmpty(t, seed)

	high := newPipeline(t, now, 100)
	coins, _ = high.rewards.Draw()
	assert.Equal(t, 100, coins)
}

func submitOneReview(t *testing.T, p *pipeline, now time.Time) (*models.User, uint) {
	t.Helper()
	author := createUser(t, p.db, true)
	_, menu := createRestaurantWithMenu(t, p.db)
	order := createDeliveredOrder(t, p.db, author.ID, menu, now.Add(-2*time.Minute))
	summary, err := p.reviews.Submit(author.ID, submitRequest(order.ID), "", "")
	require.NoError(t, err)
	return author, summary.ReviewID
}

func TestMarkHelpful(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	author, reviewID := submitOneReview(t, p, now)
	voter := createUser(t, p.db, true)

	counts, err := p.reviews.MarkHelpful(reviewID, voter.ID, true, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.HelpfulCount)
	assert.Equal(t, 0, counts.NotHelpfulCount)

	// The same voter cannot vote twice, not even flipping sides.
	_, err = p.reviews.MarkHelpful(reviewID, voter.ID, false, "", "")
	assert.True(t, apperror.Is(err, apperror.CodeAlreadyRated))

	other := createUser(t, p.db, true)
	counts, err = p.reviews.MarkHelpful(reviewID, other.ID, false, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.HelpfulCount)
	assert.Equal(t, 1, counts.NotHelpfulCount)

	// A helpful vote awards the author one point; a not-helpful vote none.
	profile, err := p.profiles.Get(author.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, profile.TotalPoints)
	assert.Equal(t, 1, profile.HelpfulReviews)
}

func TestReportThresholdAutoFlags(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	_, reviewID := submitOneReview(t, p, now)

	for i := 0; i < 2; i++ {
		reporter := createUser(t, p.db, true)
		result, err := p.reviews.Report(reviewID, reporter.ID, "Looks like a fake review", "", "")
		require.NoError(t, err)
		assert.Equal(t, i+1, result.ReportCount)
		assert.Equal(t, models.ReviewStatusActive, result.Status)
	}

	third := createUser(t, p.db, true)
	result, err := p.reviews.Report(reviewID, third.ID, "Looks like a fake review", "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ReportCount)
	assert.Equal(t, models.ReviewStatusFlagged, result.Status)

	// Fourth report still lands but the transition already happened.
	fourth := createUser(t, p.db, true)
	result, err = p.reviews.Report(reviewID, fourth.ID, "Looks like a fake review", "", "")
	require.NoError(t, err)
	assert.Equal(t, 4, result.ReportCount)
	assert.Equal(t, models.ReviewStatusFlagged, result.Status)

	var flaggedEntries int64
	require.NoError(t, p.db.Model(&models.ReviewAuditLog{}).
		Where("review_id = ? AND action_type = ?", reviewID, models.AuditActionFlagged).
		Count(&flaggedEntries).Error)
	assert.EqualValues(t, 1, flaggedEntries)

	var entry models.ReviewAuditLog
	require.NoError(t, p.db.Where("review_id = ? AND action_type = ?", reviewID, models.AuditActionFlagged).
		First(&entry).Error)
	assert.Equal(t, models.AuditRoleSystem, entry.PerformedByRole)
	assert.Nil(t, entry.PerformedByID)
}

func TestReportValidation(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	_, reviewID := submitOneReview(t, p, now)
	reporter := createUser(t, p.db, true)

	_, err := p.reviews.Report(reviewID, reporter.ID, "spam", "", "")
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	_, err = p.reviews.Report(reviewID, reporter.ID, "This review is clearly spam", "", "")
	require.NoError(t, err)

	_, err = p.reviews.Report(reviewID, reporter.ID, "This review is clearly spam", "", "")
	assert.True(t, apperror.Is(err, apperror.CodeAlreadyReported))
}

func TestRespondOncePerReview(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	author := createUser(t, p.db, true)
	restaurant, menu := createRestaurantWithMenu(t, p.db)
	order := createDeliveredOrder(t, p.db, author.ID, menu, now.Add(-2*time.Minute))
	summary, err := p.reviews.Submit(author.ID, submitRequest(order.ID), "", "")
	require.NoError(t, err)

	owner := createUser(t, p.db, true)
	owner.Role = models.RoleRestaurant
	owner.RestaurantID = &restaurant.ID
	require.NoError(t, p.db.Save(owner).Error)

	resp, err := p.reviews.Respond(summary.ReviewID, owner, "Thank you, hope to see you again!")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, resp.RespondedBy)

	_, err = p.reviews.Respond(summary.ReviewID, owner, "Second response attempt")
	assert.True(t, apperror.Is(err, apperror.CodeAlreadyResponded))
}

func TestRespondRequiresOwnershipOrAdmin(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	_, reviewID := submitOneReview(t, p, now)

	outsider := createUser(t, p.db, true)
	outsider.Role = models.RoleRestaurant
	otherRestaurant := models.Restaurant{Name: "Other Kitchen", IsActive: true}
	require.NoError(t, p.db.Create(&otherRestaurant).Error)
	outsider.RestaurantID = &otherRestaurant.ID
	require.NoError(t, p.db.Save(outsider).Error)

	_, err := p.reviews.Respond(reviewID, outsider, "We never served you")
	assert.True(t, apperror.Is(err, apperror.CodeForbidden))

	admin := createUser(t, p.db, true)
	admin.Role = models.RoleAdmin
	require.NoError(t, p.db.Save(admin).Error)

	_, err = p.reviews.Respond(reviewID, admin, "Responding on behalf of the restaurant")
	require.NoError(t, err)
}

func TestListForRestaurantFiltersAndSorts(t *testing.T) {
	now := time.Now()
	p := newPipeline(t, now, 10)
	restaurant, menu := createRestaurantWithMenu(t, p.db)

	ratings := []int{5, 2, 4}
	var reviewIDs []uint
	for _, rating := range ratings {
		user := createUser(t, p.db, true)
		order := createDeliveredOrder(t, p.db, user.ID, menu, now.Add(-2*time.Minute))
		req := submitRequest(order.ID)
		req.Rating = rating
		if rating == 2 {
			req.EmojiSentiment = models.SentimentThumbsDown
		}
		summary, err := p.reviews.Submit(user.ID, req, "", "")
		require.NoError(t, err)
		reviewIDs = append(reviewIDs, summary.ReviewID)
	}

	// Hide one; it must disappear from the public listing.
	admin := createUser(t, p.db, true)
	_, err := p.moderation.Hide(reviewIDs[1], admin.ID, "Inappropriate language in review")
	require.NoError(t, err)

	reviews, err := p.reviews.ListForRestaurant(restaurant.ID, SortRatingHigh, 0)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, 4, reviews[1].Rating)
}
