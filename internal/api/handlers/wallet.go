package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quickbites/backend/internal/services"
	"github.com/quickbites/backend/internal/utils"
)

type WalletHandler struct {
	walletService *services.WalletService
	rewardService *services.RewardService
}

func NewWalletHandler(walletService *services.WalletService, rewardService *services.RewardService) *WalletHandler {
	return &WalletHandler{walletService: walletService, rewardService: rewardService}
}

func (h *WalletHandler) Get(c *gin.Context) {
	userID := c.GetUint("user_id")

	wallet, err := h.walletService.GetOrCreate(userID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Wallet retrieved successfully", wallet)
}

func (h *WalletHandler) Transactions(c *gin.Context) {
	userID := c.GetUint("user_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	txns, err := h.walletService.Transactions(userID, limit)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch transactions", err)
		return
	}

	utils.SendSuccess(c, "Transactions retrieved successfully", txns)
}

func (h *WalletHandler) Rewards(c *gin.Context) {
	userID := c.GetUint("user_id")

	rewards, err := h.rewardService.ListForUser(userID)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch rewards", err)
		return
	}

	utils.SendSuccess(c, "Rewards retrieved successfully", rewards)
}
