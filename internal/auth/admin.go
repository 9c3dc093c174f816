package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Admin is the single operator account allowed to mutate the catalog.
// Only the bcrypt hash of the password is retained.
type Admin struct {
	username string
	hash     []byte
}

func NewAdmin(username, password string) (*Admin, error) {
	if username == "" || password == "" {
		return nil, errors.New("admin username and password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Admin{username: username, hash: hash}, nil
}

func (a *Admin) Username() string { return a.username }

func (a *Admin) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// Always pay the bcrypt cost so a wrong username isn't faster.
	passErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
