package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"guitarworks/api/internal/service"
)

const currentUserKey = "current_user"

type CurrentUserResolver interface {
	GetCurrentUser(ctx context.Context, r *http.Request) service.CurrentUser
}

// CurrentUser resolves the session cookie once per request. It never aborts;
// guards decide what each state means for a route.
func CurrentUser(resolver CurrentUserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := resolver.GetCurrentUser(c.Request.Context(), c.Request)
		c.Set(currentUserKey, current)
		c.Next()
	}
}

// CurrentUserFrom returns the resolved visitor, or the guest identity when
// the CurrentUser middleware did not run.
func CurrentUserFrom(c *gin.Context) service.CurrentUser {
	if current, ok := lookupCurrentUser(c); ok {
		return current
	}
	return service.Guest()
}

func lookupCurrentUser(c *gin.Context) (service.CurrentUser, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return service.CurrentUser{}, false
	}
	current, ok := val.(service.CurrentUser)
	return current, ok
}
