package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quickbites/backend/internal/services"
	"github.com/quickbites/backend/internal/utils"
)

type AdminHandler struct {
	moderationService *services.ModerationService
	auditService      *services.AuditService
	rewardService     *services.RewardService
}

func NewAdminHandler(moderationService *services.ModerationService, auditService *services.AuditService, rewardService *services.RewardService) *AdminHandler {
	return &AdminHandler{
		moderationService: moderationService,
		auditService:      auditService,
		rewardService:     rewardService,
	}
}

func (h *AdminHandler) FlaggedReviews(c *gin.Context) {
	reviews, err := h.moderationService.ListFlagged()
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch flagged reviews", err)
		return
	}

	utils.SendSuccess(c, "Flagged reviews retrieved successfully", reviews)
}

func (h *AdminHandler) AllReviews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	minTrust, _ := strconv.Atoi(c.DefaultQuery("min_trust_score", "0"))

	filter := services.ReviewFilter{
		Status:        c.Query("status"),
		MinTrustScore: minTrust,
	}

	reviews, total, err := h.moderationService.ListAll(filter, page, limit)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch reviews", err)
		return
	}

	utils.SendSuccess(c, "Reviews retrieved successfully", gin.H{
		"reviews": reviews,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *AdminHandler) ReviewDetail(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "review_id")
	if !ok {
		return
	}

	detail, err := h.moderationService.Detail(reviewID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Review detail retrieved successfully", detail)
}

func (h *AdminHandler) ApproveReview(c *gin.Context) {
	adminID := c.GetUint("user_id")

	reviewID, ok := parseIDParam(c, "review_id")
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	review, err := h.moderationService.Approve(reviewID, adminID, req.Notes)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Review approved", review)
}

func (h *AdminHandler) HideReview(c *gin.Context) {
	adminID := c.GetUint("user_id")

	reviewID, ok := parseIDParam(c, "review_id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Reason is required")
		return
	}

	outcome, err := h.moderationService.Hide(reviewID, adminID, req.Reason)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Review hidden", outcome)
}

func (h *AdminHandler) DeleteReview(c *gin.Context) {
	adminID := c.GetUint("user_id")

	reviewID, ok := parseIDParam(c, "review_id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Reason is required")
		return
	}

	outcome, err := h.moderationService.Delete(reviewID, adminID, req.Reason)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Review deleted", outcome)
}

func (h *AdminHandler) BanReviewer(c *gin.Context) {
	adminID := c.GetUint("user_id")

	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	var req struct {
		Reason       string `json:"reason" binding:"required"`
		DurationDays int    `json:"duration_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Reason is required")
		return
	}

	profile, err := h.moderationService.BanReviewer(userID, adminID, req.Reason, req.DurationDays)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Reviewer banned", profile)
}

func (h *AdminHandler) UnbanReviewer(c *gin.Context) {
	adminID := c.GetUint("user_id")

	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	profile, err := h.moderationService.UnbanReviewer(userID, adminID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Reviewer unbanned", profile)
}

func (h *AdminHandler) AuditLog(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	reviewID, _ := strconv.ParseUint(c.Query("review_id"), 10, 32)
	performerID, _ := strconv.ParseUint(c.Query("performed_by"), 10, 32)

	filter := services.AuditFilter{
		ReviewID:    uint(reviewID),
		ActionType:  c.Query("action_type"),
		PerformerID: uint(performerID),
	}

	entries, total, err := h.auditService.List(filter, page, limit)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch audit log", err)
		return
	}

	utils.SendSuccess(c, "Audit log retrieved successfully", gin.H{
		"entries": entries,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	timeRange := c.DefaultQuery("time_range", "all")

	stats, err := h.moderationService.Stats(timeRange)
	if err != nil {
		utils.SendInternalError(c, "Failed to compute stats", err)
		return
	}

	utils.SendSuccess(c, "Stats retrieved successfully", stats)
}

func (h *AdminHandler) ReverseReward(c *gin.Context) {
	adminID := c.GetUint("user_id")

	rewardID, ok := parseIDParam(c, "reward_id")
	if !ok {
		return
	}

	reward, err := h.rewardService.Reverse(rewardID, adminID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Reward reversed", reward)
}
