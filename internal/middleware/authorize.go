package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"guitarworks/api/internal/cookies"
	"guitarworks/api/internal/flash"
	"guitarworks/api/internal/i18n"
)

const (
	HomePath   = "/"
	LoginPath  = "/login"
	MypagePath = "/mypage"
)

// RedirectWithFlash queues message and sends the browser to location.
func RedirectWithFlash(c *gin.Context, location string, message string, kind flash.Kind) {
	flash.Set(c.Writer, message, kind)
	c.Redirect(http.StatusSeeOther, location)
	c.Abort()
}

// RequireValidSession bounces visitors whose session lookup failed or whose
// session no longer exists: the cookie is dropped and the message shown on
// the home page.
func RequireValidSession(cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := CurrentUserFrom(c)
		if current.Error {
			cookies.ClearSession(c.Writer, cookieSecure)
			RedirectWithFlash(c, HomePath, current.Message, flash.Alert)
			return
		}
		c.Next()
	}
}

func RequireUser(messages *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserFrom(c).IsGuest() {
			RedirectWithFlash(c, LoginPath, messages.Text(i18n.PleaseLogIn), flash.Caution)
			return
		}
		c.Next()
	}
}

func RequireGuest(messages *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUserFrom(c).IsGuest() {
			RedirectWithFlash(c, MypagePath, messages.Text(i18n.AlreadyLoggedIn), flash.Caution)
			return
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireUser.
func RequireAdmin(isAdmin func(username string) bool, messages *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := CurrentUserFrom(c)
		if !isAdmin(current.UserInfo.Username) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": messages.Text(i18n.Forbidden),
			})
			return
		}
		c.Next()
	}
}
