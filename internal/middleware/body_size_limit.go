package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodySize bounds filter and page change payloads
const DefaultMaxBodySize int64 = 64 << 10

// BodySizeLimitMiddleware limits the size of request bodies. Oversized
// bodies fail when the handler reads them.
func BodySizeLimitMiddleware(maxBodySize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete:
		default:
			if c.Request.ContentLength > maxBodySize {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
				c.Abort()
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		}

		c.Next()
	}
}
