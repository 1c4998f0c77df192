package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"navigator/internal/apperr"
	"navigator/internal/auth"
	"navigator/internal/logging"
)

const subjectKey = "subject"

// RequireAuth resolves the bearer token with the given authenticator and
// stores the resulting subject on the context.
func RequireAuth(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			logging.Ctx(c.Request.Context()).Debug().Msg("[AUTH] missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			logging.Ctx(c.Request.Context()).Debug().Msg("[AUTH] invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Message})
			return
		}

		subject, err := authenticator.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			logging.Ctx(c.Request.Context()).Info().Err(err).Msg("[AUTH] token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": rejection(err)})
			return
		}

		c.Set(subjectKey, subject)
		c.Next()
	}
}

func rejection(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind == apperr.KindUnauthorized {
		return appErr.Message
	}
	return auth.ErrUnauthorized.Message
}

// Subject returns the subject stored by RequireAuth.
func Subject(c *gin.Context) (auth.Subject, bool) {
	v, ok := c.Get(subjectKey)
	if !ok {
		return auth.Subject{}, false
	}
	subject, ok := v.(auth.Subject)
	return subject, ok
}
