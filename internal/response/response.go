// Package response writes the JSON envelope shared by every endpoint:
// {success, data, message, error}.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

// Envelope is the standard response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable code and, outside release mode, the
// underlying error text. Detail is diagnostic only.
type ErrorBody struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// OK writes a 200 envelope with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 envelope with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message writes a 200 envelope carrying only a message.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Error renders err as a failure envelope. *AppError values keep their status
// and code; anything else is logged and reported as INTERNAL_ERROR.
func Error(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
	} else if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"message", appErr.Message,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
		)
	}

	body := &ErrorBody{Code: appErr.Code}
	if appErr.Internal != nil && gin.Mode() != gin.ReleaseMode {
		body.Detail = appErr.Internal.Error()
	}

	c.AbortWithStatusJSON(appErr.StatusCode, Envelope{
		Success: false,
		Message: appErr.Message,
		Error:   body,
	})
}
