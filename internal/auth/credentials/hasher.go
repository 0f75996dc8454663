package credentials

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher stores passwords for providers that keep them locally. The
// managed provider never hands passwords to this service.
type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher; cost 0 means bcrypt.DefaultCost.
func NewHasher(cost int) Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

func (h Hasher) Hash(password string) (string, error) {
	if PasswordLength(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify maps every mismatch onto ErrInvalidCredentials.
func (h Hasher) Verify(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}
