package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"navigator/internal/apperr"
	"navigator/internal/auth"
	"navigator/internal/logging"
	"navigator/internal/middleware"
	"navigator/internal/models"
	"navigator/internal/store"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logging.Ctx(c.Request.Context()).Error().Interface("panic", r).Msgf("[%s] panic recovered", route)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	logging.Ctx(c.Request.Context()).Warn().Int("status", status).Msgf("[%s] returning error: %s", route, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondError maps err onto its apperr kind. The cause of a server-side
// failure is exposed only as details.
func respondError(c *gin.Context, route string, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": "Internal server error"}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status = appErr.Kind.HTTPStatus()
		body["error"] = appErr.Message
	}
	if status >= http.StatusInternalServerError && err.Error() != body["error"] {
		body["details"] = err.Error()
	}

	event := logging.Ctx(c.Request.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(c.Request.Context()).Error()
	}
	event.Err(err).Int("status", status).Msgf("[%s] request failed", route)
	c.AbortWithStatusJSON(status, body)
}

func respondValidationError(c *gin.Context, message string, err error) {
	if errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request body is required"})
		return
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := fieldError.Field()
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   message,
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

var registerFieldNames sync.Once

// useJSONFieldNames makes validation errors report the json name of a field.
func useJSONFieldNames() {
	registerFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// loadUser fetches the record for the authenticated subject, by id when the
// credential carries one and by email otherwise.
func loadUser(ctx context.Context, users store.UserStore, subject auth.Subject, timeout time.Duration) (*models.User, error) {
	return store.GetWithRetry(ctx, timeout, func(ctx context.Context) (*models.User, error) {
		if subject.ID != "" {
			return users.GetByID(ctx, subject.ID)
		}
		return users.GetByEmail(ctx, subject.Email)
	})
}

func saveUser(ctx context.Context, users store.UserStore, u *models.User, timeout time.Duration) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return users.Update(ctx, u)
}

func currentSubject(c *gin.Context, route string) (auth.Subject, bool) {
	subject, ok := middleware.Subject(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, route, "Authorization header is required")
	}
	return subject, ok
}
