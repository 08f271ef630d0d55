// internal/auth/auth_test.go
package auth

import (
	"context"
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signEd25519(t *testing.T, key ed25519.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestAdvisoryVerifierWarns(t *testing.T) {
	logger, hook := test.NewNullLogger()
	v := AdvisoryVerifier{Logger: logger}
	require.NoError(t, v.Verify(context.Background(), "alice", ""))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "alice", hook.LastEntry().Data["identity"])
}

func TestJWTVerifierEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	v := NewJWTVerifier(pub)
	ctx := context.Background()

	good := signEd25519(t, priv, jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(time.Hour).Unix()})
	assert.NoError(t, v.Verify(ctx, "alice", good))
	assert.ErrorIs(t, v.Verify(ctx, "bob", good), ErrUnauthorized)

	expired := signEd25519(t, priv, jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(-time.Hour).Unix()})
	assert.ErrorIs(t, v.Verify(ctx, "alice", expired), ErrUnauthorized)

	noSub := signEd25519(t, priv, jwt.MapClaims{"name": "alice"})
	assert.ErrorIs(t, v.Verify(ctx, "alice", noSub), ErrUnauthorized)

	_, otherPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	forged := signEd25519(t, otherPriv, jwt.MapClaims{"sub": "alice"})
	assert.ErrorIs(t, v.Verify(ctx, "alice", forged), ErrUnauthorized)

	assert.ErrorIs(t, v.Verify(ctx, "alice", ""), ErrUnauthorized)
}

func TestJWTVerifierRejectsUnexpectedMethod(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	v := NewJWTVerifier(pub)

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	assert.ErrorIs(t, v.Verify(context.Background(), "alice", hs), ErrUnauthorized)
}

func TestHMACVerifier(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	v := NewHMACVerifier(secret)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "carol"}).SignedString(secret)
	require.NoError(t, err)
	assert.NoError(t, v.Verify(context.Background(), "carol", tok))
	assert.ErrorIs(t, v.Verify(context.Background(), "dave", tok), ErrUnauthorized)
}

func TestNewJWTVerifierFromPath(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	dir := t.TempDir()
	path := filepath.Join(dir, "public.key")
	require.NoError(t, os.WriteFile(path, pub, 0o600))

	v, err := NewJWTVerifierFromPath(path)
	require.NoError(t, err)
	tok := signEd25519(t, priv, jwt.MapClaims{"sub": "erin"})
	assert.NoError(t, v.Verify(context.Background(), "erin", tok))

	short := filepath.Join(dir, "short.key")
	require.NoError(t, os.WriteFile(short, []byte("nope"), 0o600))
	_, err = NewJWTVerifierFromPath(short)
	assert.Error(t, err)

	_, err = NewJWTVerifierFromPath(filepath.Join(dir, "missing.key"))
	assert.Error(t, err)
}

func TestPasetoVerifier(t *testing.T) {
	v, err := NewPasetoVerifier(DeriveKey("correct horse battery staple", "arcade"))
	require.NoError(t, err)
	ctx := context.Background()

	tok, err := v.Issue("frank", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, v.Verify(ctx, "frank", tok))
	assert.ErrorIs(t, v.Verify(ctx, "grace", tok), ErrUnauthorized)

	v.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.ErrorIs(t, v.Verify(ctx, "frank", tok), ErrUnauthorized, "expired")

	other, err := NewPasetoVerifier(DeriveKey("different", "arcade"))
	require.NoError(t, err)
	assert.ErrorIs(t, other.Verify(ctx, "frank", tok), ErrUnauthorized)
	assert.ErrorIs(t, other.Verify(ctx, "frank", "v2.local.garbage"), ErrUnauthorized)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	a := DeriveKey("secret", "salt")
	assert.Len(t, a, PasetoKeySize)
	assert.Equal(t, a, DeriveKey("secret", "salt"))
	assert.NotEqual(t, a, DeriveKey("secret", "pepper"))

	_, err := NewPasetoVerifier([]byte("short"))
	assert.Error(t, err)
}
