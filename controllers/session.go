package controllers

import (
	"net/http"
	"time"

	"blog/middleware"
	"blog/models"
	"blog/utils"

	"github.com/gin-gonic/gin"
)

// Sessions issues and clears the browser session cookie.
type Sessions struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

func (s Sessions) Start(c *gin.Context, user *models.User) error {
	token, err := utils.GenerateJWT(s.Secret, user.ID, user.PasswordFingerprint(), s.TTL)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s Sessions) End(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
