package service

import (
	"github.com/allisson/go-pwdhash"
)

// credentialService implements CredentialService using Argon2id.
type credentialService struct {
	hasher *pwdhash.PasswordHasher
}

// HashPassword hashes a plain text password using Argon2id. A random salt is
// generated per call, so hashing the same password twice yields different
// strings that both verify.
func (s *credentialService) HashPassword(plainPassword string) (hashedPassword string, error error) {
	hashedPassword, err := s.hasher.Hash([]byte(plainPassword))
	if err != nil {
		return "", err
	}
	return hashedPassword, nil
}

// ComparePassword performs a constant-time comparison between a plain
// password and its stored hash.
func (s *credentialService) ComparePassword(plainPassword string, hashedPassword string) bool {
	ok, err := s.hasher.Verify([]byte(plainPassword), hashedPassword)
	if err != nil {
		return false
	}
	return ok
}

// NewCredentialService creates a CredentialService using Argon2id hashing.
// The Moderate policy trades roughly 100ms of hashing time on commodity
// hardware for offline brute-force resistance.
func NewCredentialService() CredentialService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with a valid policy.
		panic(err)
	}

	return &credentialService{
		hasher: hasher,
	}
}
