// Package auth verifies inbound credentials. Two schemes coexist: HS256 access
// tokens issued at login, and Firebase ID tokens issued by the mobile client's
// identity provider. Both resolve to a Subject.
package auth

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"navigator/internal/apperr"
	"navigator/internal/models"
)

var ErrUnauthorized = apperr.New(apperr.KindUnauthorized, "Invalid authorization token")

// Subject is the identity a verified credential resolves to. ID is empty for
// local tokens issued before the user had an id.
type Subject struct {
	ID       string
	Email    string
	Provider string
}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Subject, error)
}

// Local accepts access tokens issued by a TokenIssuer.
type Local struct {
	Issuer *TokenIssuer
}

func (l Local) Authenticate(_ context.Context, token string) (Subject, error) {
	claims, err := l.Issuer.Verify(token)
	if err != nil {
		return Subject{}, err
	}
	return Subject{ID: claims.UserID, Email: claims.Subject, Provider: models.ProviderPassword}, nil
}

// IDTokenVerifier is satisfied by *auth.Client from the Firebase Admin SDK.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Firebase accepts Firebase ID tokens. Rejections are not broken down because
// the provider does not say whether a token was expired or malformed.
type Firebase struct {
	Verifier IDTokenVerifier
}

func (f Firebase) Authenticate(ctx context.Context, token string) (Subject, error) {
	verified, err := f.Verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return Subject{}, apperr.Wrap(apperr.KindUnauthorized, ErrUnauthorized.Message, err)
	}
	email, _ := verified.Claims["email"].(string)
	return Subject{ID: verified.UID, Email: strings.ToLower(email), Provider: models.ProviderFirebase}, nil
}

// Chain tries each authenticator in order and returns the first success.
// An expired local token is reported as ErrExpired; any other failure
// across the chain collapses to ErrUnauthorized.
type Chain []Authenticator

func (c Chain) Authenticate(ctx context.Context, token string) (Subject, error) {
	var firstErr error
	for _, a := range c {
		subject, err := a.Authenticate(ctx, token)
		if err == nil {
			return subject, nil
		}
		if errors.Is(err, ErrExpired) {
			return Subject{}, ErrExpired
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		return Subject{}, ErrUnauthorized
	}
	return Subject{}, apperr.Wrap(apperr.KindUnauthorized, ErrUnauthorized.Message, firstErr)
}
