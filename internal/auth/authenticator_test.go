package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navigator/internal/apperr"
	"navigator/internal/models"
)

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(_ context.Context, token string) (*fbauth.Token, error) {
	uid, ok := f[token]
	if !ok {
		return nil, errors.New("ID token has expired or is malformed")
	}
	return &fbauth.Token{UID: uid, Claims: map[string]interface{}{"email": "Rider@Example.com"}}, nil
}

func TestFirebaseAuthenticator(t *testing.T) {
	a := Firebase{Verifier: fakeVerifier{"good": "uid-7"}}

	subject, err := a.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, Subject{ID: "uid-7", Email: "rider@example.com", Provider: models.ProviderFirebase}, subject)

	_, err = a.Authenticate(context.Background(), "bad")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestChainFallsThroughToFirebase(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	chain := Chain{Local{Issuer: issuer}, Firebase{Verifier: fakeVerifier{"fb-token": "uid-9"}}}

	subject, err := chain.Authenticate(context.Background(), "fb-token")
	require.NoError(t, err)
	assert.Equal(t, "uid-9", subject.ID)

	local, err := issuer.Issue("a@b.com", "uid-1")
	require.NoError(t, err)
	subject, err = chain.Authenticate(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, Subject{ID: "uid-1", Email: "a@b.com", Provider: models.ProviderPassword}, subject)

	_, err = chain.Authenticate(context.Background(), "garbage")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestChainReportsExpiry(t *testing.T) {
	start := time.Now()
	clock := start
	issuer := NewTokenIssuer("secret", time.Second).WithClock(func() time.Time { return clock })
	token, err := issuer.Issue("a@b.com", "")
	require.NoError(t, err)
	clock = start.Add(5 * time.Second)

	chain := Chain{Local{Issuer: issuer}, Firebase{Verifier: fakeVerifier{}}}
	_, err = chain.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpired)
}
