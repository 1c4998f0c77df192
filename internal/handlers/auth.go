package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"navigator/internal/auth"
	"navigator/internal/logging"
	"navigator/internal/models"
	"navigator/internal/store"
)

type SignupRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates a password user and returns it with an access token.
func Signup(users store.UserStore, issuer *auth.TokenIssuer, now func() time.Time, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/signup"
		defer handlePanic(c, route)

		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, "email and password required", err)
			return
		}

		email := store.NormalizeEmail(req.Email)
		password := strings.TrimSpace(req.Password)
		if email == "" || password == "" {
			respondWithError(c, http.StatusBadRequest, route, "email and password required")
			return
		}

		ctx := c.Request.Context()
		_, err := store.GetWithRetry(ctx, timeout, func(ctx context.Context) (*models.User, error) {
			return users.GetByEmail(ctx, email)
		})
		switch {
		case err == nil:
			respondWithError(c, http.StatusConflict, route, "email already in use")
			return
		case !errors.Is(err, store.ErrNotFound):
			respondError(c, route, err)
			return
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			respondError(c, route, err)
			return
		}

		user := models.NewUser("", email, models.ProviderPassword, now().UTC())
		user.PasswordHash = hash
		user.DisplayName = strings.TrimSpace(req.DisplayName)

		createCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		saved, err := users.Create(createCtx, user)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				respondWithError(c, http.StatusConflict, route, "email already in use")
				return
			}
			respondError(c, route, err)
			return
		}

		token, err := issuer.Issue(saved.Email, saved.ID)
		if err != nil {
			respondError(c, route, err)
			return
		}

		logging.Ctx(ctx).Info().Str("user_id", saved.ID).Msg("[AUTH] user registered")
		c.JSON(http.StatusOK, gin.H{"user": saved.Normalize(), "token": token})
	}
}

// Login checks a password and returns the user with a fresh access token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func Login(users store.UserStore, issuer *auth.TokenIssuer, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, "email and password required", err)
			return
		}

		email := store.NormalizeEmail(req.Email)
		password := strings.TrimSpace(req.Password)
		if email == "" || password == "" {
			respondWithError(c, http.StatusBadRequest, route, "email and password required")
			return
		}

		ctx := c.Request.Context()
		user, err := store.GetWithRetry(ctx, timeout, func(ctx context.Context) (*models.User, error) {
			return users.GetByEmail(ctx, email)
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(c, http.StatusUnauthorized, route, auth.ErrInvalidCredentials.Message)
				return
			}
			respondError(c, route, err)
			return
		}

		if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
			logging.Ctx(ctx).Info().Str("user_id", user.ID).Msg("[AUTH] login invalid credentials")
			respondError(c, route, err)
			return
		}

		token, err := issuer.Issue(user.Email, user.ID)
		if err != nil {
			respondError(c, route, err)
			return
		}

		logging.Ctx(ctx).Info().Str("user_id", user.ID).Msg("[AUTH] user login succeeded")
		c.JSON(http.StatusOK, gin.H{"user": user.Normalize(), "token": token})
	}
}

// Me returns the user named by a local access token.
func Me(users store.UserStore, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/me"
		defer handlePanic(c, route)

		subject, ok := currentSubject(c, route)
		if !ok {
			return
		}

		user, err := store.GetWithRetry(c.Request.Context(), timeout, func(ctx context.Context) (*models.User, error) {
			return users.GetByEmail(ctx, subject.Email)
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(c, http.StatusNotFound, route, "user not found")
				return
			}
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user.Normalize()})
	}
}
