package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/quantlevels/internal/domain/dto"
	"github.com/guttosm/quantlevels/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into a JSON ErrorResponse.
//
// The last attached error wins. An attached dto.ErrorResponse is written as is;
// any other error becomes a 500. Nothing is written if a handler already responded.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	err := c.Errors.Last().Err

	logger.L().Error().
		Err(err).
		Str("path", c.Request.URL.Path).
		Msg("request_failed")

	if c.Writer.Written() {
		return
	}

	var resp dto.ErrorResponse
	if errors.As(err, &resp) {
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err))
}

// AbortWithError stops the chain and writes status with a standard error body.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	resp := dto.NewErrorResponse(message, err)
	_ = c.Error(resp)
	c.AbortWithStatusJSON(status, resp)
}
