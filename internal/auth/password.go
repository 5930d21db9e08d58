package auth

import (
	"errors"
	"strings"
	"unicode"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the password policy and the confirmation match.
func ValidatePassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return model.Invalid("password", "must be at least 8 characters")
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return model.Invalid("password", "cannot be entirely numeric")
	}
	if password != confirm {
		return model.Invalid("password_confirm", "passwords do not match")
	}
	return nil
}

var ErrInvalidCredentials = errors.New("invalid username or password")
