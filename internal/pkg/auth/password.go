package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost for stored credentials
const BcryptCost = 12

// PasswordHasher hides the hashing algorithm from the services
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher creates a hasher; cost <= 0 selects BcryptCost
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = BcryptCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash hashes the password
func (h *BcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Compare checks a password against a stored hash
func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
