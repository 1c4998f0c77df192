package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"navigator/internal/logging"
	"navigator/internal/models"
	"navigator/internal/store"
)

type createUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// CreateUser creates the profile for an identity verified by the auth
// middleware, keyed by the identity's id.
func CreateUser(users store.UserStore, now func() time.Time, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/create"
		defer handlePanic(c, route)

		subject, ok := currentSubject(c, route)
		if !ok {
			return
		}

		var req createUserRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondValidationError(c, "invalid body", err)
				return
			}
		}

		email := store.NormalizeEmail(req.Email)
		if email == "" {
			email = subject.Email
		}
		if email == "" {
			respondWithError(c, http.StatusBadRequest, route, "email is required")
			return
		}
		if subject.ID == "" {
			respondWithError(c, http.StatusConflict, route, "User profile already exists")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		exists, err := users.Exists(ctx, subject.ID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		if exists {
			respondWithError(c, http.StatusConflict, route, "User profile already exists")
			return
		}

		user := models.NewUser(subject.ID, email, subject.Provider, now().UTC())
		user.DisplayName = strings.TrimSpace(req.DisplayName)

		saved, err := users.Create(ctx, user)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				respondWithError(c, http.StatusConflict, route, "User profile already exists")
				return
			}
			respondError(c, route, err)
			return
		}

		logging.Ctx(ctx).Info().Str("user_id", saved.ID).Str("provider", saved.AuthProvider).Msg("[USERS] profile created")
		c.JSON(http.StatusCreated, gin.H{"user": saved.Normalize()})
	}
}

func GetProfile(users store.UserStore, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/profile"
		defer handlePanic(c, route)

		subject, ok := currentSubject(c, route)
		if !ok {
			return
		}

		user, err := loadUser(c.Request.Context(), users, subject, timeout)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Normalize()})
	}
}

// DeleteProfile removes the store record only; the external identity, if
// any, is left alone.
func DeleteProfile(users store.UserStore, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/users/profile"
		defer handlePanic(c, route)

		subject, ok := currentSubject(c, route)
		if !ok {
			return
		}

		user, err := loadUser(c.Request.Context(), users, subject, timeout)
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		deleted, err := users.Delete(ctx, user.ID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		if !deleted {
			respondError(c, route, store.ErrNotFound)
			return
		}

		logging.Ctx(ctx).Info().Str("user_id", user.ID).Msg("[USERS] profile deleted")
		c.JSON(http.StatusOK, gin.H{"message": "User profile deleted"})
	}
}
