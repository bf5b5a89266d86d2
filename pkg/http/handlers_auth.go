package http

import (
	"errors"
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"airmon.uz/telemetry-service/pkg/auth"
)

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

var refreshRequestSchema = z.Struct(z.Shape{
	"RefreshToken": z.String().Optional(),
})

// Login implements the password grant: form-encoded credentials in,
// token pair out. The response never reveals which credential was wrong.
func (rs *RestfulServer) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	sess := rs.session()
	defer sess.Close()

	svc := rs.authService(sess)

	user, err := svc.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	pair, err := svc.IssueTokenPair(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (rs *RestfulServer) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := refreshRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	sess := rs.session()
	defer sess.Close()

	pair, err := rs.authService(sess).Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Refresh token is not provided"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			unauthorized(c)
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Me returns the authenticated user's profile.
func (rs *RestfulServer) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username":  user.Username,
		"email":     user.Email,
		"full_name": nil,
		"disabled":  user.Disabled,
	})
}
