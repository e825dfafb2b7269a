package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickbites/backend/pkg/apperror"
)

type APIResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    interface{}            `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
	Extra   map[string]interface{} `json:"extra,omitempty"`
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SendCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SendError(c *gin.Context, statusCode int, message string, err error) {
	response := APIResponse{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(statusCode, response)
}

// SendAppError maps an AppError onto the response envelope, exposing its
// machine-readable reason code and any extra payload (cooldown seconds,
// ban expiry). Unknown errors are masked as a generic server error.
func SendAppError(c *gin.Context, err error) {
	appErr := apperror.From(err)

	response := APIResponse{
		Success: false,
		Message: appErr.Message,
		Reason:  appErr.Code,
		Extra:   appErr.Extra,
	}
	if appErr.Code == apperror.CodeInternal {
		response.Message = "Something went wrong"
	}

	c.JSON(appErr.Status, response)
}

func SendValidationError(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message, nil)
}

func SendUnauthorized(c *gin.Context, message string) {
	SendError(c, http.StatusUnauthorized, message, nil)
}

func SendForbidden(c *gin.Context, message string) {
	SendError(c, http.StatusForbidden, message, nil)
}

func SendInternalError(c *gin.Context, message string, err error) {
	SendError(c, http.StatusInternalServerError, message, err)
}
