package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/quickbites/backend/internal/config"
	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/pkg/apperror"
	"github.com/quickbites/backend/pkg/logger"
	"gorm.io/gorm"
)

// ReviewService orchestrates the submission pipeline and owns the review
// record: community feedback, reports, and the restaurant response.
type ReviewService struct {
	db       *gorm.DB
	cfg      *config.Config
	wallets  *WalletService
	profiles *ProfileService
	rewards  *RewardService
	audit    *AuditService

	Now func() time.Time
}

func NewReviewService(db *gorm.DB, cfg *config.Config, wallets *WalletService, profiles *ProfileService, rewards *RewardService, audit *AuditService) *ReviewService {
	return &ReviewService{
		db:       db,
		cfg:      cfg,
		wallets:  wallets,
		profiles: profiles,
		rewards:  rewards,
		audit:    audit,
		Now:      time.Now,
	}
}

type SubmitReviewRequest struct {
	OrderID           uint     `json:"order_id" binding:"required"`
	EmojiSentiment    string   `json:"emoji_sentiment" binding:"required"`
	Rating            int      `json:"rating" binding:"required,min=1,max=5"`
	FoodQualityRating int      `json:"food_quality_rating" binding:"required,min=1,max=5"`
	DeliveryRating    int      `json:"delivery_rating" binding:"required,min=1,max=5"`
	ReviewText        string   `json:"review_text" binding:"required"`
	Photos            []string `json:"photos"`
}

type ReviewSummary struct {
	ReviewID      uint     `json:"review_id"`
	Rating        int      `json:"rating"`
	TrustScore    int      `json:"trust_score"`
	Labels        []string `json:"labels"`
	CoinsRewarded int      `json:"coins_rewarded"`
	RewardStatus  string   `json:"reward_status"`
	WalletBalance int64    `json:"wallet_balance"`
}

// Submit runs the full pipeline: validation, the same preconditions the
// eligibility gate checks (a prior gate call is not trusted), trust scoring,
// labeling, persistence, reward, wallet credit, profile update, audit.
//
// The review commits in its own transaction; reward, wallet, profile and
// audit commit in a second one. If the second fails the review stands, the
// reward is left pending, and the cron sweep reconciles it later. Review
// visibility is never blocked on wallet health.
func (s *ReviewService) Submit(callerID uint, req SubmitReviewRequest, deviceFingerprint, ipAddress string) (*ReviewSummary, error) {
	if req.EmojiSentiment != models.SentimentThumbsUp && req.EmojiSentiment != models.SentimentThumbsDown {
		return nil, apperror.BadRequest("Please select thumbs up or thumbs down")
	}

	body := strings.TrimSpace(req.ReviewText)
	if len(body) == 0 {
		return nil, apperror.BadRequest("Please write something about your experience")
	}
	if len(body) < s.cfg.ReviewMinBodyChars {
		return nil, apperror.BadRequest(fmt.Sprintf("Review must be at least %d characters", s.cfg.ReviewMinBodyChars))
	}
	if len(body) > s.cfg.ReviewMaxBodyChars {
		return nil, apperror.BadRequest(fmt.Sprintf("Review must be at most %d characters", s.cfg.ReviewMaxBodyChars))
	}

	var order models.Order
	if err := s.db.Preload("Items").First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Order")
		}
		return nil, err
	}
	if order.UserID != callerID {
		return nil, apperror.Forbidden("Not your order")
	}
	if order.Status != models.OrderStatusDelivered {
		return nil, apperror.State(apperror.CodeNotDelivered, "Order not delivered yet")
	}

	now := s.Now()
	reviewableAt := order.DeliveredTime().Add(s.cfg.ReviewCooldown)
	if now.Before(reviewableAt) {
		remaining := int64(math.Ceil(reviewableAt.Sub(now).Seconds()))
		return nil, apperror.State(apperror.CodeTooSoon,
			fmt.Sprintf("Please wait %d more seconds", remaining)).
			WithExtra("seconds_remaining", remaining)
	}

	var existing int64
	if err := s.db.Model(&models.Review{}).Where("order_id = ?", req.OrderID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperror.State(apperror.CodeAlreadyReviewed, "Already reviewed")
	}

	restaurantID, err := s.resolveRestaurant(&order)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User")
		}
		return nil, err
	}
	if !user.IsVerified {
		return nil, apperror.State(apperror.CodeNotVerified, "Please verify your mobile number to submit reviews")
	}

	profile, err := s.profiles.EnsureForSubmission(&user)
	if err != nil {
		return nil, err
	}
	if profile.BanActive(now) {
		return nil, apperror.State(apperror.CodeBanned, "Your review privileges are temporarily suspended")
	}

	trustScore := CalculateTrustScore(profile, body, now)
	isFirstReview := profile.TotalReviews == 0
	labels := AssignReviewLabels(profile, isFirstReview, trustScore)

	coins, seed := s.rewards.Draw()

	review := models.Review{
		UserID:            callerID,
		RestaurantID:      restaurantID,
		OrderID:           req.OrderID,
		EmojiSentiment:    req.EmojiSentiment,
		Rating:            req.Rating,
		FoodQualityRating: req.FoodQualityRating,
		DeliveryRating:    req.DeliveryRating,
		ReviewText:        body,
		Photos:            req.Photos,
		TrustScore:        trustScore,
		Labels:            labels,
		Status:            models.ReviewStatusActive,
		DeviceFingerprint: deviceFingerprint,
		IPAddress:         ipAddress,
	}
	if err := s.db.Create(&review).Error; err != nil {
		// The unique index on order_id decides races; the loser lands here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.State(apperror.CodeAlreadyReviewed, "Already reviewed")
		}
		return nil, err
	}

	var walletBalance int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.rewards.Issue(tx, callerID, review.ID, coins, seed, deviceFingerprint, ipAddress, models.RewardStatusCredited); err != nil {
			return err
		}

		wallet, err := s.wallets.Credit(tx, callerID, int64(coins),
			models.TxTypeReviewReward,
			fmt.Sprintf("Review reward for order #%d", req.OrderID),
			fmt.Sprintf("%d", review.ID))
		if err != nil {
			return err
		}
		walletBalance = wallet.Balance

		if err := s.applyProfileUpdates(tx, profile, trustScore, coins, body, req.Photos, deviceFingerprint, ipAddress, now); err != nil {
			return err
		}

		return s.audit.Log(tx, review.ID, models.AuditActionCreated,
			AuditActor{UserID: &callerID, Role: models.AuditRoleUser},
			map[string]interface{}{
				"emoji_sentiment": req.EmojiSentiment,
				"trust_score":     trustScore,
				"coins_rewarded":  coins,
			}, ipAddress, deviceFingerprint)
	})
	if err != nil {
		// The review is already committed and stays valid. Leave the reward
		// pending for the reconciliation sweep and shout for the tooling.
		logger.WithFields(map[string]interface{}{
			"review_id": review.ID,
			"order_id":  req.OrderID,
			"user_id":   callerID,
			"coins":     coins,
			"error":     err.Error(),
		}).Error("review persisted but reward crediting failed; reward left pending")

		if _, ierr := s.rewards.Issue(nil, callerID, review.ID, coins, seed, deviceFingerprint, ipAddress, models.RewardStatusPending); ierr != nil && !apperror.Is(ierr, apperror.CodeInvalidState) {
			logger.WithFields(map[string]interface{}{
				"review_id": review.ID,
				"error":     ierr.Error(),
			}).Error("failed to record pending reward")
		}

		if wallet, werr := s.wallets.GetOrCreate(callerID); werr == nil {
			walletBalance = wallet.Balance
		}

		return &ReviewSummary{
			ReviewID:      review.ID,
			Rating:        review.Rating,
			TrustScore:    trustScore,
			Labels:        labels,
			CoinsRewarded: coins,
			RewardStatus:  models.RewardStatusPending,
			WalletBalance: walletBalance,
		}, nil
	}

	return &ReviewSummary{
		ReviewID:      review.ID,
		Rating:        review.Rating,
		TrustScore:    trustScore,
		Labels:        labels,
		CoinsRewarded: coins,
		RewardStatus:  models.RewardStatusCredited,
		WalletBalance: walletBalance,
	}, nil
}

// resolveRestaurant maps the order's first line item through its menu to the
// owning restaurant.
func (s *ReviewService) resolveRestaurant(order *models.Order) (uint, error) {
	if len(order.Items) == 0 {
		return 0, apperror.State(apperror.CodeRestaurantMissing, "Restaurant not found")
	}

	var menu models.Menu
	if err := s.db.First(&menu, order.Items[0].MenuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.State(apperror.CodeRestaurantMissing, "Restaurant not found")
		}
		return 0, err
	}
	return menu.RestaurantID, nil
}

func (s *ReviewService) applyProfileUpdates(tx *gorm.DB, profile *models.ReviewerProfile, trustScore, coins int, body string, photos []string, device, ip string, now time.Time) error {
	// Running mean over reviews, including this one.
	profile.AvgTrustScore = (profile.AvgTrustScore*float64(profile.TotalReviews) + float64(trustScore)) / float64(profile.TotalReviews+1)
	profile.TotalReviews++
	profile.LastReviewDate = &now
	profile.TotalCoinsEarned += coins

	var delivered int64
	if err := tx.Model(&models.Order{}).
		Where("user_id = ? AND status = ?", profile.UserID, models.OrderStatusDelivered).
		Count(&delivered).Error; err != nil {
		return err
	}
	profile.TotalOrders = int(delivered)

	profile.AddPoints(10)
	if len(photos) > 0 {
		profile.AddPoints(5)
	}
	if len(body) > 200 {
		profile.AddPoints(3)
	}

	profile.TrackDevice(device, now, s.cfg.DeviceHistoryLimit)
	profile.TrackIP(ip, now, s.cfg.DeviceHistoryLimit)

	return tx.Save(profile).Error
}

type FeedbackCounts struct {
	HelpfulCount    int `json:"helpful_count"`
	NotHelpfulCount int `json:"not_helpful_count"`
}

// MarkHelpful records one helpful / not-helpful vote. The composite unique
// index is the arbiter: a second vote from the same user fails already_rated
// no matter how the requests interleave.
func (s *ReviewService) MarkHelpful(reviewID, callerID uint, isHelpful bool, deviceFingerprint, ipAddress string) (*FeedbackCounts, error) {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Review")
		}
		return nil, err
	}

	feedbackType := models.FeedbackNotHelpful
	counterColumn := "not_helpful_count"
	if isHelpful {
		feedbackType = models.FeedbackHelpful
		counterColumn = "helpful_count"
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		feedback := models.ReviewFeedback{
			ReviewID:          reviewID,
			UserID:            callerID,
			FeedbackType:      feedbackType,
			DeviceFingerprint: deviceFingerprint,
			IPAddress:         ipAddress,
		}
		if err := tx.Create(&feedback).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.State(apperror.CodeAlreadyRated, "Already rated")
			}
			return err
		}

		if err := tx.Model(&models.Review{}).Where("id = ?", reviewID).
			UpdateColumn(counterColumn, gorm.Expr(counterColumn+" + 1")).Error; err != nil {
			return err
		}

		if isHelpful {
			var authorProfile models.ReviewerProfile
			if err := tx.Where(models.ReviewerProfile{UserID: review.UserID}).FirstOrCreate(&authorProfile).Error; err != nil {
				return err
			}
			authorProfile.HelpfulReviews++
			authorProfile.TotalHelpfulVotes++
			authorProfile.AddPoints(1)
			if err := tx.Save(&authorProfile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&review, reviewID).Error; err != nil {
		return nil, err
	}
	return &FeedbackCounts{
		HelpfulCount:    review.HelpfulCount,
		NotHelpfulCount: review.NotHelpfulCount,
	}, nil
}

type ReportResult struct {
	ReportCount int    `json:"report_count"`
	Status      string `json:"status"`
}

// Report files an abuse report. Crossing the configured threshold while the
// review is active auto-flags it; the guarded status update makes the
// transition fire exactly once, with a system audit entry.
func (s *ReviewService) Report(reviewID, callerID uint, reason, deviceFingerprint, ipAddress string) (*ReportResult, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < s.cfg.ReportMinReasonChars {
		return nil, apperror.BadRequest(fmt.Sprintf("Reason required (min %d chars)", s.cfg.ReportMinReasonChars))
	}

	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Review")
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		report := models.ReviewReport{
			ReviewID: reviewID,
			UserID:   callerID,
			Reason:   reason,
		}
		if err := tx.Create(&report).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.State(apperror.CodeAlreadyReported, "Already reported")
			}
			return err
		}

		return tx.Model(&models.Review{}).Where("id = ?", reviewID).
			UpdateColumn("report_count", gorm.Expr("report_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&review, reviewID).Error; err != nil {
		return nil, err
	}

	if review.ReportCount >= s.cfg.ReportThreshold && review.Status == models.ReviewStatusActive {
		res := s.db.Model(&models.Review{}).
			Where("id = ? AND status = ?", reviewID, models.ReviewStatusActive).
			Update("status", models.ReviewStatusFlagged)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			review.Status = models.ReviewStatusFlagged
			if err := s.audit.Log(nil, reviewID, models.AuditActionFlagged,
				AuditActor{Role: models.AuditRoleSystem},
				map[string]interface{}{
					"auto_flagged": true,
					"report_count": review.ReportCount,
				}, ipAddress, deviceFingerprint); err != nil {
				return nil, err
			}
		}
	}

	return &ReportResult{ReportCount: review.ReportCount, Status: review.Status}, nil
}

type RestaurantResponse struct {
	Text        string    `json:"text"`
	RespondedBy uint      `json:"responded_by"`
	RespondedAt time.Time `json:"responded_at"`
}

// Respond records the restaurant's single response to a review. The caller
// must own the restaurant or be an admin.
func (s *ReviewService) Respond(reviewID uint, caller *models.User, text string) (*RestaurantResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.BadRequest("Response text required")
	}

	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Review")
		}
		return nil, err
	}

	ownsRestaurant := caller.Role == models.RoleRestaurant &&
		caller.RestaurantID != nil && *caller.RestaurantID == review.RestaurantID
	if !ownsRestaurant && caller.Role != models.RoleAdmin {
		return nil, apperror.Forbidden("Only the restaurant owner or an admin can respond")
	}

	now := s.Now()
	res := s.db.Model(&models.Review{}).
		Where("id = ? AND (response_text = '' OR response_text IS NULL)", reviewID).
		Updates(map[string]interface{}{
			"response_text": text,
			"responded_by":  caller.ID,
			"responded_at":  now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperror.State(apperror.CodeAlreadyResponded, "Review already has a response")
	}

	role := models.AuditRoleRestaurant
	if caller.Role == models.RoleAdmin {
		role = models.AuditRoleAdmin
	}
	if err := s.audit.Log(nil, reviewID, models.AuditActionResponded,
		AuditActor{UserID: &caller.ID, Role: role},
		map[string]interface{}{"response_length": len(text)}, "", ""); err != nil {
		return nil, err
	}

	return &RestaurantResponse{Text: text, RespondedBy: caller.ID, RespondedAt: now}, nil
}

// Listing sort orders.
const (
	SortRecent     = "recent"
	SortHelpful    = "helpful"
	SortRatingHigh = "rating_high"
	SortRatingLow  = "rating_low"
)

// ListForRestaurant returns active reviews for a restaurant, filtered by
// minimum trust score.
func (s *ReviewService) ListForRestaurant(restaurantID uint, sort string, minTrustScore int) ([]models.Review, error) {
	query := s.db.Where("restaurant_id = ? AND status = ? AND trust_score >= ?",
		restaurantID, models.ReviewStatusActive, minTrustScore)

	switch sort {
	case SortHelpful:
		query = query.Order("helpful_count DESC, created_at DESC")
	case SortRatingHigh:
		query = query.Order("rating DESC, created_at DESC")
	case SortRatingLow:
		query = query.Order("rating ASC, created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var reviews []models.Review
	err := query.Find(&reviews).Error
	return reviews, err
}

// ListMine returns all of the caller's reviews regardless of status.
func (s *ReviewService) ListMine(userID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	return reviews, err
}
