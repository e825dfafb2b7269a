package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/quickbites/backend/internal/services"
	"github.com/quickbites/backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	resp, err := h.authService.Signup(req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendCreated(c, "Account created successfully", resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Logged in successfully", resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	resp, err := h.authService.Refresh(req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Token refreshed successfully", resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		utils.SendInternalError(c, "Failed to log out", err)
		return
	}

	utils.SendSuccess(c, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "User retrieved successfully", user)
}

func (h *AuthHandler) VerifyMobile(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.authService.VerifyMobile(userID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Mobile number verified", user)
}
