package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/quickbites/backend/internal/services"
	"github.com/quickbites/backend/internal/utils"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) GetMine(c *gin.Context) {
	userID := c.GetUint("user_id")

	profile, err := h.profileService.GetOrCreate(userID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Profile retrieved successfully", profile)
}
