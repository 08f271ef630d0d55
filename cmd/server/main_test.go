package main

import (
	"context"
	"testing"
	"time"

	"github.com/jason-s-yu/arcade/internal/auth"
	"github.com/jason-s-yu/arcade/internal/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerifier(t *testing.T) {
	logger, _ := test.NewNullLogger()

	v, err := newVerifier(&config.Config{AuthMode: config.AuthAdvisory}, logger)
	require.NoError(t, err)
	assert.IsType(t, auth.AdvisoryVerifier{}, v)

	v, err = newVerifier(&config.Config{AuthMode: config.AuthJWT, JWTSecret: "s3cret"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &auth.JWTVerifier{}, v)

	cfg := &config.Config{AuthMode: config.AuthPaseto, PasetoSecret: "passphrase", PasetoSalt: "arcade"}
	v, err = newVerifier(cfg, logger)
	require.NoError(t, err)
	pv := v.(*auth.PasetoVerifier)
	token, err := pv.Issue("alice", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, v.Verify(context.Background(), "alice", token))

	_, err = newVerifier(&config.Config{AuthMode: config.AuthJWT, JWTPublicKeyPath: "/does/not/exist"}, logger)
	assert.Error(t, err)
}

func TestOriginPatterns(t *testing.T) {
	got := originPatterns([]string{"*", "https://play.example.com/", "http://localhost:3000"})
	assert.Equal(t, []string{"*", "play.example.com", "localhost:3000"}, got)
}
