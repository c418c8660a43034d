package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"blog/models"
	"blog/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	SessionCookie = "session_token"
	userKey       = "user"
	userIDKey     = "user_id"
)

// UserLoader resolves the user id carried by a session token.
type UserLoader interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// LoadUser attaches the signed-in user, if any, to the request. The session
// cookie is checked first, then an "Authorization: Bearer" header. A bad or
// expired token leaves the request anonymous, as does one issued before the
// user's last password change.
func LoadUser(secret string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(secret, token)
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("Ignoring invalid session token")
			c.Next()
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			c.Next()
			return
		}
		if claims.Fingerprint != user.PasswordFingerprint() {
			log.Debug().Uint("user_id", user.ID).Str("request_id", c.GetString(RequestIDKey)).Msg("Ignoring session issued for an old password")
			c.Next()
			return
		}

		c.Set(userKey, user)
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// CurrentUser returns the user set by LoadUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// LoginURL builds the login redirect for a page that needs a session.
func LoginURL(next string) string {
	return "/login/?next=" + url.QueryEscape(next)
}

// LoginRequired redirects anonymous visitors to the login page, remembering
// where they were going.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// StaffRequired lets staff through. Other signed-in users get forbidden,
// anonymous visitors are sent to log in.
func StaffRequired(forbidden gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		if !user.IsStaff {
			forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func APIAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			utils.Unauthorized(c, "Authentication credentials were not provided or are invalid")
			c.Abort()
			return
		}
		c.Next()
	}
}
