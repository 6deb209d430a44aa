package httputil

import (
	"github.com/gin-gonic/gin"
)

const MsgServerError = "Server error"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is used by endpoints that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondError writes an error response in JSON format
func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Message: message})
}

// AbortError stops the handler chain with an error response.
func AbortError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Message: message})
}
