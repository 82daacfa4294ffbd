package secrets

import (
	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

var ErrEmptySecret = errors.New("secret is empty")

// Hasher turns a raw secret into the opaque hash stored on an account.
type Hasher interface {
	Hash(raw string) (string, error)
	Compare(hash, raw string) bool
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptySecret
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt")
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
