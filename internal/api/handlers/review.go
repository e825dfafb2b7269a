package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quickbites/backend/internal/services"
	"github.com/quickbites/backend/internal/utils"
)

type ReviewHandler struct {
	reviewService      *services.ReviewService
	eligibilityService *services.EligibilityService
	authService        *services.AuthService
	storageService     *services.StorageService
}

func NewReviewHandler(reviewService *services.ReviewService, eligibilityService *services.EligibilityService, authService *services.AuthService, storageService *services.StorageService) *ReviewHandler {
	return &ReviewHandler{
		reviewService:      reviewService,
		eligibilityService: eligibilityService,
		authService:        authService,
		storageService:     storageService,
	}
}

// deviceFingerprint is client-supplied and best effort; absence never
// blocks a request.
func deviceFingerprint(c *gin.Context) string {
	return c.GetHeader("X-Device-Fingerprint")
}

func (h *ReviewHandler) CheckEligibility(c *gin.Context) {
	userID := c.GetUint("user_id")

	orderID, ok := parseIDParam(c, "order_id")
	if !ok {
		return
	}

	result, err := h.eligibilityService.Check(orderID, userID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Eligibility checked", result)
}

func (h *ReviewHandler) Submit(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req services.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	summary, err := h.reviewService.Submit(userID, req, deviceFingerprint(c), c.ClientIP())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendCreated(c, "Review submitted successfully", summary)
}

func (h *ReviewHandler) UploadPhotos(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.SendValidationError(c, "Invalid multipart form")
		return
	}

	files := form.File["photos"]
	if len(files) == 0 {
		utils.SendValidationError(c, "No photos provided")
		return
	}
	if len(files) > 5 {
		utils.SendValidationError(c, "Maximum 5 photos per review")
		return
	}

	results, err := h.storageService.UploadReviewPhotos(files)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	utils.SendSuccess(c, "Photos uploaded successfully", results)
}

func (h *ReviewHandler) ListForRestaurant(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "restaurant_id")
	if !ok {
		return
	}

	sort := c.DefaultQuery("sort", services.SortRecent)
	minTrust, _ := strconv.Atoi(c.DefaultQuery("min_trust_score", "0"))

	reviews, err := h.reviewService.ListForRestaurant(restaurantID, sort, minTrust)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch reviews", err)
		return
	}

	utils.SendSuccess(c, "Reviews retrieved successfully", reviews)
}

func (h *ReviewHandler) ListMine(c *gin.Context) {
	userID := c.GetUint("user_id")

	reviews, err := h.reviewService.ListMine(userID)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch reviews", err)
		return
	}

	utils.SendSuccess(c, "Reviews retrieved successfully", reviews)
}

func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	userID := c.GetUint("user_id")

	reviewID, ok := parseIDParam(c, "review_id")
	if !ok {
		return
	}

	var req struct {
		IsHelpful *bool `json:"is_helpful" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	counts, err := h.reviewService.MarkHelpful(reviewID, userID, *req.IsHelpful, deviceFingerprint(c), c.ClientIP())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	message := "Marked as helpful"
	if !*req.IsHelpful {
		message = "Marked as not helpful"
	}

	utils.SendSuccess(c, message, counts)
}

func (h *ReviewHandler) Report(c *gin.Context) {
	userID := c.GetUint("user_id")

	reviewID, ok := parseIDParam(c, "review_id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	result, err := h.reviewService.Report(reviewID, userID, req.Reason, deviceFingerprint(c), c.ClientIP())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Report submitted successfully", result)
}

func (h *ReviewHandler) Respond(c *gin.Context) {
	userID := c.GetUint("user_id")

	reviewID, ok := parseIDParam(c, "review_id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	caller, err := h.authService.GetUserByID(userID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	response, err := h.reviewService.Respond(reviewID, caller, req.Text)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Response recorded successfully", response)
}
