package middleware

import (
	"github.com/gin-gonic/gin"

	"fintrack/internal/response"
)

// ErrorHandler renders the last error attached with c.Error when the handler
// chain has not written a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		response.Error(c, c.Errors.Last().Err)
	}
}
