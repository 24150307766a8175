package service

import "golang.org/x/crypto/bcrypt"

// BcryptHasher hashes credentials with bcrypt at a fixed work factor.
// Hashing is CPU-bound and may block; at the configured cost it stays
// sub-second, so no timeout is applied.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Mismatch is not an
// error; bcrypt's comparison is constant-time over the hash.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
