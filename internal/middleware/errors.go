package middleware

import (
	"errors"
	"log"
	"net/http"

	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ErrorResponder writes the last error attached with c.Error as
// {"success": false, "error": message}. Handlers never write error bodies
// themselves. Causes of 5xx responses are logged and never returned.
func ErrorResponder() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message := describe(err)
		if status >= http.StatusInternalServerError {
			log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, cause(err))
		}

		c.JSON(status, gin.H{"success": false, "error": message})
	}
}

func describe(err error) (int, string) {
	var er *services.ErrorResponse
	if errors.As(err, &er) {
		return er.StatusCode, er.Message
	}
	return http.StatusInternalServerError, "Server Error"
}

func cause(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}
