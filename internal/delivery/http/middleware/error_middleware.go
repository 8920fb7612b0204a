package middleware

import (
	"errors"
	"net/http"
	"skillsprint/internal/delivery/http/response"
	"skillsprint/pkg/apperror"
	"skillsprint/pkg/logger"
	"skillsprint/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &appErr):
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed",
					"path", c.FullPath(), "request_id", c.GetString("RequestID"), "error", appErr.Err)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
		case errors.As(err, &verrs):
			response.Error(c, http.StatusBadRequest, "Validation failed", validation.FormatValidationErrors(err))
		default:
			// Internal details stay in the server log.
			logger.Log.Error("Internal Server Error",
				"path", c.FullPath(), "request_id", c.GetString("RequestID"), "error", err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}
