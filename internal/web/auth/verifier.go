// Package auth provides pluggable credential verification for the web
// login form.
package auth

import (
	"context"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/solris/commhub/internal/web/repository"
)

// CredentialVerifier checks a username/password pair. Implementations
// must not reveal through errors whether the username exists.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (bool, error)
}

// StaticVerifier accepts a single fixed credential pair, used for the
// built-in demo account.
type StaticVerifier struct {
	Username string
	Password string
}

func (v *StaticVerifier) Verify(ctx context.Context, username, password string) (bool, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.Password)) == 1
	return userOK && passOK, nil
}

// DBVerifier checks credentials against the users table.
type DBVerifier struct {
	Users *repository.UserRepository
}

func (v *DBVerifier) Verify(ctx context.Context, username, password string) (bool, error) {
	u, err := v.Users.GetByUsername(username)
	if err != nil {
		return false, err
	}
	if u == nil {
		// Burn a comparison to keep timing uniform for unknown users.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000uGZv1ZQZyUYyBjQwU0WZz5vG3z5bC6C"), []byte(password))
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

// Chain tries each verifier in order and accepts on the first match.
type Chain []CredentialVerifier

func (c Chain) Verify(ctx context.Context, username, password string) (bool, error) {
	for _, v := range c {
		ok, err := v.Verify(ctx, username, password)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
