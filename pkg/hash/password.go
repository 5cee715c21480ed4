package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	cost        = 12
	minPassword = 8
)

// Hash bcrypts a plaintext password. Length is checked here as a backstop;
// request validation rejects short passwords before this point.
func Hash(password string) (string, error) {
	if len(password) < minPassword {
		return "", fmt.Errorf("password must be at least %d characters", minPassword)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}

func Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
