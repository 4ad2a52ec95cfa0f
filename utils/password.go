package utils

import (
	"errors"

	"github.com/matthewhartstonge/argon2"
)

var ErrEmptyPassword = errors.New("password must not be empty")

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// VerifyPassword reports false for a malformed hash rather than failing, so
// login cannot distinguish a corrupt row from a wrong password.
func VerifyPassword(encodedHash, password string) bool {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	if err != nil {
		return false
	}
	return ok
}
