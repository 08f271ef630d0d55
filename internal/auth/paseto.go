// internal/auth/paseto.go
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
	"golang.org/x/crypto/argon2"
)

// PasetoKeySize is the symmetric key length for v2.local tokens.
const PasetoKeySize = 32

// Argon2id cost used to stretch a configured passphrase into a PASETO key.
const (
	kdfIterations  = 3
	kdfMemory      = 64 * 1024
	kdfParallelism = 2
)

// DeriveKey stretches a passphrase into a v2.local key. Both the account
// service and the match server must derive with the same salt.
func DeriveKey(passphrase, salt string) []byte {
	return argon2.IDKey([]byte(passphrase), []byte(salt), kdfIterations, kdfMemory, kdfParallelism, PasetoKeySize)
}

// PasetoVerifier checks v2.local tokens. The token subject must equal the
// asserted identity and the token must be valid at the time of the check.
type PasetoVerifier struct {
	key []byte
	v2  *paseto.V2
	now func() time.Time
}

func NewPasetoVerifier(key []byte) (*PasetoVerifier, error) {
	if len(key) != PasetoKeySize {
		return nil, fmt.Errorf("paseto key must be %d bytes, got %d", PasetoKeySize, len(key))
	}
	return &PasetoVerifier{key: key, v2: paseto.NewV2(), now: time.Now}, nil
}

// Issue encrypts a token for identity valid for ttl. The account service owns
// issuance in production; this is used by tooling and tests.
func (v *PasetoVerifier) Issue(identity string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := paseto.JSONToken{
		Subject:    identity,
		IssuedAt:   now,
		NotBefore:  now,
		Expiration: now.Add(ttl),
	}
	return v.v2.Encrypt(v.key, claims, nil)
}

func (v *PasetoVerifier) Verify(_ context.Context, identity, token string) error {
	if token == "" {
		return fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	var claims paseto.JSONToken
	if err := v.v2.Decrypt(token, v.key, &claims, nil); err != nil {
		return fmt.Errorf("%w: paseto decrypt: %v", ErrUnauthorized, err)
	}
	if err := claims.Validate(paseto.ValidAt(v.now()), paseto.Subject(identity)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return nil
}
