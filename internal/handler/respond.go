package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
)

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, dto.APIResponse{Message: message, Data: data})
}

// fail translates a domain error to its HTTP status and client message.
func fail(c *gin.Context, err error) {
	status, message := apperr.Status(err)
	c.JSON(status, dto.APIResponse{Message: message})
}

func badRequest(c *gin.Context) {
	fail(c, apperr.ErrInvalidRequest)
}
