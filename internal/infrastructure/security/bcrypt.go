package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// DefaultBcryptCost matches the strength used for every stored credential.
// Lowering it would silently weaken all future hashes, so callers passing a
// non-positive cost get this value instead.
const DefaultBcryptCost = 12

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
