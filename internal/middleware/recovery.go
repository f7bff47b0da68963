package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"guitarworks/api/internal/flash"
	"guitarworks/api/internal/i18n"
)

func Recovery(log zerolog.Logger, messages *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("error", r).
					Str("request_id", requestIDFrom(c)).
					Msg("panic recovered")

				text := messages.Text(i18n.Unexpected)
				flash.Set(c.Writer, text, flash.Alert)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "internal_server_error",
					"message": text,
				})
			}
		}()
		c.Next()
	}
}
