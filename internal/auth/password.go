package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"navigator/internal/apperr"
)

var ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid credentials")

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "password hash failed", err)
	}
	return string(hash), nil
}

// CheckPassword returns ErrInvalidCredentials on mismatch or a malformed hash.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return apperr.Wrap(apperr.KindUnauthorized, ErrInvalidCredentials.Message, err)
}
