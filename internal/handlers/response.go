package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-messaging/internal/apperrors"
)

// envelope is the body of every chat response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: msg})
}

// respondError reports err with its own message. Errors without an explicit
// status are internal.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.StatusOf(err), envelope{Success: false, Message: err.Error()})
}
