package http

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"airmon.uz/telemetry-service/pkg/auth"
	"airmon.uz/telemetry-service/pkg/common"
	"airmon.uz/telemetry-service/pkg/models"
)

const contextKeyUser = "current_user"

// TrustedHostMiddleware rejects requests whose Host header is not in the
// allowlist. An empty allowlist disables the check.
func TrustedHostMiddleware(trustedHosts []string) gin.HandlerFunc {
	hostSet := common.Reducer(trustedHosts,
		func(m map[string]bool, h string) map[string]bool {
			m[h] = true
			return m
		},
		map[string]bool{},
	)

	return func(c *gin.Context) {
		if len(hostSet) == 0 {
			c.Next()
			return
		}
		host := c.Request.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if !hostSet[host] {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Invalid host header"})
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware throttles per client IP; a nil store disables it.
func (rs *RestfulServer) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rs.RateLimiterStore == nil {
			c.Next()
			return
		}
		if !rs.RateLimiterStore.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

// AuthRequired resolves the bearer token to an active user and stores it
// in the request context.
func (rs *RestfulServer) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c)
			return
		}

		sess := rs.session()
		defer sess.Close()

		user, err := rs.authService(sess).ResolveActiveUser(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrInactiveUser) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Inactive user"})
				return
			}
			unauthorized(c)
			return
		}

		c.Set(contextKeyUser, user)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(contextKeyUser); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
