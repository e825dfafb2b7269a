package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quickbites/backend/internal/config"
	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/pkg/apperror"
	"github.com/quickbites/backend/pkg/logger"
	"gorm.io/gorm"
)

// BanNotifier tells a reviewer their privileges were suspended. Delivery is
// best effort; failures never roll back moderation.
type BanNotifier interface {
	SendBanNotification(email, reason string, until time.Time) error
}

// ModerationService implements the admin state machine on review status:
// active <-> flagged -> {active, hidden, deleted}; hidden and deleted are
// terminal. Deletion is logical so the audit trail stays intact. Every
// state change lands exactly one audit entry, atomically with the change.
type ModerationService struct {
	db       *gorm.DB
	cfg      *config.Config
	profiles *ProfileService
	audit    *AuditService
	notifier BanNotifier

	Now func() time.Time
}

func NewModerationService(db *gorm.DB, cfg *config.Config, profiles *ProfileService, audit *AuditService, notifier BanNotifier) *ModerationService {
	return &ModerationService{
		db:       db,
		cfg:      cfg,
		profiles: profiles,
		audit:    audit,
		notifier: notifier,
		Now:      time.Now,
	}
}

// ListFlagged returns reviews awaiting moderation, most reported first.
func (s *ModerationService) ListFlagged() ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Where("status = ?", models.ReviewStatusFlagged).
		Order("report_count DESC, created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

type ReviewFilter struct {
	Status        string
	MinTrustScore int
}

func (s *ModerationService) ListAll(filter ReviewFilter, page, limit int) ([]models.Review, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := s.db.Model(&models.Review{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinTrustScore > 0 {
		query = query.Where("trust_score >= ?", filter.MinTrustScore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := query.Order("created_at DESC, id DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&reviews).Error
	return reviews, total, err
}

type ReviewDetail struct {
	Review          models.Review           `json:"review"`
	ReviewerProfile *models.ReviewerProfile `json:"reviewer_profile,omitempty"`
	ReviewerHistory []models.Review         `json:"reviewer_history"`
	AuditTrail      []models.ReviewAuditLog `json:"audit_trail"`
}

func (s *ModerationService) Detail(reviewID uint) (*ReviewDetail, error) {
	var review models.Review
	if err := s.db.Preload("Reports").First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Review")
		}
		return nil, err
	}

	detail := &ReviewDetail{Review: review}

	var profile models.ReviewerProfile
	if err := s.db.Where("user_id = ?", review.UserID).First(&profile).Error; err == nil {
		detail.ReviewerProfile = &profile
	}

	if err := s.db.Where("user_id = ?", review.UserID).
		Order("created_at DESC").Find(&detail.ReviewerHistory).Error; err != nil {
		return nil, err
	}

	trail, err := s.audit.ReviewHistory(reviewID)
	if err != nil {
		return nil, err
	}
	detail.AuditTrail = trail

	return detail, nil
}

// Approve returns a flagged review to active.
func (s *ModerationService) Approve(reviewID, adminID uint, notes string) (*models.Review, error) {
	if strings.TrimSpace(notes) == "" {
		notes = "Approved by admin"
	}

	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Review")
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Review{}).
			Where("id = ? AND status = ?", reviewID, models.ReviewStatusFlagged).
			Updates(map[string]interface{}{
				"status":           models.ReviewStatusActive,
				"moderation_notes": notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.State(apperror.CodeInvalidState, "Only flagged reviews can be approved")
		}

		return s.audit.Log(tx, reviewID, models.AuditActionApproved,
			AuditActor{UserID: &adminID, Role: models.AuditRoleAdmin},
			map[string]interface{}{"notes": notes}, "", "")
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&review, reviewID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

type ModerationOutcome struct {
	Review         *models.Review `json:"review"`
	ReviewerBanned bool           `json:"reviewer_banned"`
}

// Hide takes a review out of public listings and penalizes the author
// (warning, -20 points). Three warnings ban the author automatically.
func (s *ModerationService) Hide(reviewID, adminID uint, reason string) (*ModerationOutcome, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < s.cfg.HideMinReasonChars {
		return nil, apperror.BadRequest(fmt.Sprintf("Please provide a reason (minimum %d characters)", s.cfg.HideMinReasonChars))
	}

	return s.takeDown(reviewID, adminID, reason, models.ReviewStatusHidden, models.AuditActionHidden, reason, 20)
}

// Delete logically deletes a review with a heavier penalty (-50 points).
// The row stays for audit integrity.
func (s *ModerationService) Delete(reviewID, adminID uint, reason string) (*ModerationOutcome, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < s.cfg.DeleteMinReasonChars {
		return nil, apperror.BadRequest(fmt.Sprintf("Deletion requires detailed reason (minimum %d characters)", s.cfg.DeleteMinReasonChars))
	}

	return s.takeDown(reviewID, adminID, reason, models.ReviewStatusDeleted, models.AuditActionDeleted, "DELETED: "+reason, 50)
}

func (s *ModerationService) takeDown(reviewID, adminID uint, reason, toStatus, auditAction, notes string, penaltyPoints int) (*ModerationOutcome, error) {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Review")
		}
		return nil, err
	}

	banned := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Review{}).
			Where("id = ? AND status IN ?", reviewID,
				[]string{models.ReviewStatusActive, models.ReviewStatusFlagged}).
			Updates(map[string]interface{}{
				"status":           toStatus,
				"moderation_notes": notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.State(apperror.CodeInvalidState, "Review is not in a moderatable state")
		}

		var err error
		banned, err = s.profiles.ApplyPenalty(tx, review.UserID, penaltyPoints)
		if err != nil {
			return err
		}

		return s.audit.Log(tx, reviewID, auditAction,
			AuditActor{UserID: &adminID, Role: models.AuditRoleAdmin},
			map[string]interface{}{
				"reason":          reason,
				"reviewer_banned": banned,
			}, "", "")
	})
	if err != nil {
		return nil, err
	}

	if banned {
		s.notifyBan(review.UserID, "Multiple fake/inappropriate reviews", s.Now().Add(s.cfg.AutoBanDuration))
	}

	if err := s.db.First(&review, reviewID).Error; err != nil {
		return nil, err
	}
	return &ModerationOutcome{Review: &review, ReviewerBanned: banned}, nil
}

// BanReviewer suspends a user's review privileges for the given number of
// days, independent of any single review.
func (s *ModerationService) BanReviewer(userID, adminID uint, reason string, durationDays int) (*models.ReviewerProfile, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < s.cfg.BanMinReasonChars {
		return nil, apperror.BadRequest(fmt.Sprintf("Ban requires detailed reason (minimum %d characters)", s.cfg.BanMinReasonChars))
	}
	if durationDays <= 0 {
		durationDays = 30
	}

	expiresAt := s.Now().Add(time.Duration(durationDays) * 24 * time.Hour)
	profile, err := s.profiles.Ban(userID, reason, expiresAt)
	if err != nil {
		return nil, err
	}

	s.logReviewerAction(userID, adminID, map[string]interface{}{
		"banned":        true,
		"reason":        reason,
		"duration_days": durationDays,
	})
	s.notifyBan(userID, reason, expiresAt)

	return profile, nil
}

func (s *ModerationService) UnbanReviewer(userID, adminID uint) (*models.ReviewerProfile, error) {
	profile, err := s.profiles.Unban(userID)
	if err != nil {
		return nil, err
	}

	s.logReviewerAction(userID, adminID, map[string]interface{}{"banned": false})
	return profile, nil
}

// logReviewerAction anchors a profile-level moderation action to the
// reviewer's latest review when one exists; profile-only actions on users
// with no reviews have nothing to anchor to and are skipped.
func (s *ModerationService) logReviewerAction(userID, adminID uint, details map[string]interface{}) {
	var latest models.Review
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").First(&latest).Error; err != nil {
		return
	}
	if err := s.audit.Log(nil, latest.ID, models.AuditActionAdminAction,
		AuditActor{UserID: &adminID, Role: models.AuditRoleAdmin}, details, "", ""); err != nil {
		logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("failed to write reviewer moderation audit entry")
	}
}

func (s *ModerationService) notifyBan(userID uint, reason string, until time.Time) {
	if s.notifier == nil {
		return
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return
	}
	if err := s.notifier.SendBanNotification(user.Email, reason, until); err != nil {
		logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("ban notification email failed")
	}
}

type ReviewStats struct {
	TotalReviews    int64   `json:"total_reviews"`
	ActiveReviews   int64   `json:"active_reviews"`
	FlaggedReviews  int64   `json:"flagged_reviews"`
	HiddenReviews   int64   `json:"hidden_reviews"`
	DeletedReviews  int64   `json:"deleted_reviews"`
	AvgTrustScore   float64 `json:"avg_trust_score"`
	TotalReviewers  int64   `json:"total_reviewers"`
	BannedReviewers int64   `json:"banned_reviewers"`
}

// Stats aggregates moderation health numbers, computed live. timeRange is
// "today", "last7days" or empty for all time.
func (s *ModerationService) Stats(timeRange string) (*ReviewStats, error) {
	query := s.db.Model(&models.Review{})

	now := s.Now()
	switch timeRange {
	case "today":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		query = query.Where("created_at >= ?", start)
	case "last7days":
		start := now.AddDate(0, 0, -7)
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		query = query.Where("created_at >= ?", start)
	}

	stats := &ReviewStats{}
	if err := query.Session(&gorm.Session{}).Count(&stats.TotalReviews).Error; err != nil {
		return nil, err
	}

	counts := []struct {
		status string
		dest   *int64
	}{
		{models.ReviewStatusActive, &stats.ActiveReviews},
		{models.ReviewStatusFlagged, &stats.FlaggedReviews},
		{models.ReviewStatusHidden, &stats.HiddenReviews},
		{models.ReviewStatusDeleted, &stats.DeletedReviews},
	}
	for _, c := range counts {
		if err := query.Session(&gorm.Session{}).Where("status = ?", c.status).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var avg sql.NullFloat64
	if err := query.Session(&gorm.Session{}).
		Where("status = ?", models.ReviewStatusActive).
		Select("AVG(trust_score)").Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg.Valid {
		stats.AvgTrustScore = avg.Float64
	}

	if err := s.db.Model(&models.ReviewerProfile{}).Count(&stats.TotalReviewers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.ReviewerProfile{}).
		Where("is_banned = ?", true).Count(&stats.BannedReviewers).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
