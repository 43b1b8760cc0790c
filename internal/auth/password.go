package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyField         = errors.New("all fields are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password is too short")
)

// HashPassword produces a salted bcrypt hash. The salt is generated per
// call, so hashing the same password twice yields different hashes.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateNewPassword enforces the rules for any newly set password:
// both fields present, matching, and at least MinPasswordLength characters.
func ValidateNewPassword(password, confirm string) error {
	if password == "" || confirm == "" {
		return ErrEmptyField
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// HumanPasswordError maps validation errors to user-facing messages.
func HumanPasswordError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyField):
		return "Please fill in all fields."
	case errors.Is(err, ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, ErrPasswordTooShort):
		return "The new password must be at least 6 characters long."
	default:
		return "Password change failed: " + err.Error()
	}
}
