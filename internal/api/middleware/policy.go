package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/internal/utils"
)

// Capabilities gate route groups by what the caller may do rather than by
// raw role string comparisons scattered across handlers. The role set is
// closed; a token carrying an unknown role gets nothing.
const (
	CapSubmitReview  = "review:submit"
	CapRespondReview = "review:respond"
	CapModerate      = "moderation:manage"
	CapManageOrders  = "orders:manage"
	CapViewOwnWallet = "wallet:view"
)

var roleCapabilities = map[string]map[string]bool{
	models.RoleCustomer: {
		CapSubmitReview:  true,
		CapViewOwnWallet: true,
	},
	models.RoleRestaurant: {
		CapRespondReview: true,
		CapManageOrders:  true,
	},
	models.RoleAdmin: {
		CapSubmitReview:  true,
		CapRespondReview: true,
		CapModerate:      true,
		CapManageOrders:  true,
		CapViewOwnWallet: true,
	},
}

func HasCapability(role, capability string) bool {
	caps, ok := roleCapabilities[role]
	return ok && caps[capability]
}

func Authorize(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("user_role")
		if !HasCapability(role, capability) {
			utils.SendForbidden(c, "You do not have permission to perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return Authorize(CapModerate)
}
