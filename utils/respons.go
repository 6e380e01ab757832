package utils

import (
	"github.com/gin-gonic/gin"
)

// MessageResponse is the body of every failed request.
type MessageResponse struct {
	Message string `json:"message"`
}

func RespondJSON(c *gin.Context, code int, body interface{}) {
	c.JSON(code, body)
}

func RespondMessage(c *gin.Context, code int, message string) {
	c.JSON(code, MessageResponse{Message: message})
}

func RespondError(c *gin.Context, code int, err error) {
	RespondMessage(c, code, err.Error())
}
