package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AdminVerifier checks the hostel office login.
type AdminVerifier interface {
	VerifyAdmin(username, password string) error
}

// BcryptAdmin holds a single admin account with a bcrypt password hash.
type BcryptAdmin struct {
	username string
	hash     []byte
}

func NewBcryptAdmin(username, passwordHash string) (*BcryptAdmin, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	return &BcryptAdmin{username: username, hash: []byte(passwordHash)}, nil
}

func (a *BcryptAdmin) VerifyAdmin(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// bcrypt runs for every attempt.
	passErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
