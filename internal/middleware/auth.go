package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/getmentor/mentor-finder/pkg/jwt"
	"github.com/getmentor/mentor-finder/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ViewerContextKey holds the verified *jwt.ViewerClaims of the caller
	ViewerContextKey = "viewer"

	// BearerTokenContextKey holds the raw bearer token of the caller
	BearerTokenContextKey = "bearer_token"
)

// ViewerMiddleware reads the caller's bearer token. Requests without one
// pass through anonymously. When tokenManager is set the token must verify
// and its claims are stored for handlers; otherwise the token is only kept
// so it can be forwarded to the mentor API.
func ViewerMiddleware(tokenManager *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		c.Set(BearerTokenContextKey, token)

		if tokenManager == nil {
			c.Next()
			return
		}

		claims, err := tokenManager.ValidateToken(token)
		if err != nil {
			logger.Warn("Invalid viewer token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			_ = c.Error(err) //nolint:errcheck

			msg := "Unauthorized"
			if errors.Is(err, jwt.ErrExpiredToken) {
				msg = "Session expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}

		c.Set(ViewerContextKey, claims)
		c.Next()
	}
}

// GetViewer returns the verified claims of the caller, if any
func GetViewer(c *gin.Context) (*jwt.ViewerClaims, bool) {
	v, exists := c.Get(ViewerContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.ViewerClaims)
	return claims, ok && claims != nil
}

// GetViewerClassID returns the caller's assigned class, nil when unknown
func GetViewerClassID(c *gin.Context) *int64 {
	claims, ok := GetViewer(c)
	if !ok || claims.ClassID == nil {
		return nil
	}
	id := *claims.ClassID
	return &id
}

// GetBearerToken returns the caller's raw bearer token, "" if none
func GetBearerToken(c *gin.Context) string {
	return c.GetString(BearerTokenContextKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
