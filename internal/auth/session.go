// internal/auth/session.go
package auth

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier checks tokens issued by the account service. Tokens are signed
// with either an ed25519 key or a shared HMAC secret, and their "sub" claim
// must equal the identity the client asserts.
type JWTVerifier struct {
	publicKey ed25519.PublicKey
	secret    []byte
}

// NewJWTVerifierFromPath reads a raw ed25519 public key from file.
func NewJWTVerifierFromPath(publicPath string) (*JWTVerifier, error) {
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(publicKeyData) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key file %s: want %d bytes, got %d", publicPath, ed25519.PublicKeySize, len(publicKeyData))
	}
	return &JWTVerifier{publicKey: ed25519.PublicKey(publicKeyData)}, nil
}

// NewJWTVerifier verifies EdDSA tokens against publicKey.
func NewJWTVerifier(publicKey ed25519.PublicKey) *JWTVerifier {
	return &JWTVerifier{publicKey: publicKey}
}

// NewHMACVerifier verifies HS256/384/512 tokens against a shared secret.
func NewHMACVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) keyFunc(t *jwt.Token) (interface{}, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodEd25519:
		if v.publicKey != nil {
			return v.publicKey, nil
		}
	case *jwt.SigningMethodHMAC:
		if v.secret != nil {
			return v.secret, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
}

// Verify parses token and checks that its subject is identity.
func (v *JWTVerifier) Verify(_ context.Context, identity, token string) error {
	if token == "" {
		return fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	t, err := jwt.Parse(token, v.keyFunc)
	if err != nil {
		return fmt.Errorf("%w: jwt parse error: %v", ErrUnauthorized, err)
	}
	if !t.Valid {
		return fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	sub, err := t.Claims.GetSubject()
	if err != nil || sub == "" {
		return fmt.Errorf("%w: missing sub in jwt", ErrUnauthorized)
	}
	if sub != identity {
		return fmt.Errorf("%w: token subject does not match identity", ErrUnauthorized)
	}
	return nil
}
