package middleware

import (
	"errors"
	"net/http"

	"spooky-styles/logger"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error recorded with c.Error as the JSON
// error envelope. Messages of non-AppErrors never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		appErr, ok := utils.AsAppError(err)
		if !ok {
			appErr = utils.Internal("Internal server error", err)
		}
		if appErr.Kind == utils.KindInternal && errors.Is(err, repositories.ErrValueTooLong) {
			appErr = utils.BadRequest("A submitted value is too long")
		}

		if appErr.Status() >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error().Err(err).Msg("request failed")
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.Status(), models.ErrorResponse{
			Success: false,
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
	}
}

// Recovery turns panics into the standard 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.FromContext(c.Request.Context()).Error().Interface("panic", recovered).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Message: "Internal server error",
		})
	})
}

// NotFound answers unknown routes with the JSON envelope.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Route not found"})
}
