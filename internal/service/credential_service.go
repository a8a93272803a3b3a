package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialService hashes and verifies passwords with bcrypt.
type CredentialService struct {
	cost int
}

// NewCredentialService constructs a CredentialService. Out of range costs fall
// back to bcrypt.DefaultCost.
func NewCredentialService(cost int) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialService{cost: cost}
}

// Hash returns the bcrypt hash of plain.
func (s *CredentialService) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash. A mismatch is not an error; a
// malformed hash is.
func (s *CredentialService) Verify(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}
