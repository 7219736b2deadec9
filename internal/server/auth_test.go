package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/shoptiles/internal/config"
	"github.com/gravitas-games/shoptiles/internal/logging"
)

const testIssuer = "login.test"

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func signToken(t *testing.T, key *ecdsa.PrivateKey, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	return Claims{
		UserID:      42,
		Username:    "abigail",
		Email:       "abigail@example.com",
		Permissions: 1,
		Activated:   1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	key := newKey(t)
	v := newValidatorWithKey(config.JWTConfig{Issuer: testIssuer}, &key.PublicKey, nil, logging.Discard())

	player, err := v.ValidateToken(context.Background(), signToken(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "42", player.ID)
	assert.Equal(t, "abigail", player.Username)
	assert.True(t, player.IsAdmin())
}

func TestValidateTokenRejections(t *testing.T) {
	key := newKey(t)
	v := newValidatorWithKey(config.JWTConfig{Issuer: testIssuer}, &key.PublicKey, nil, logging.Discard())
	ctx := context.Background()

	cases := map[string]func(c *Claims){
		"wrong issuer": func(c *Claims) { c.Issuer = "elsewhere" },
		"expired":      func(c *Claims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) },
		"inactive":     func(c *Claims) { c.Activated = 0 },
		"banned":       func(c *Claims) { c.Activated = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validClaims()
			mutate(&c)
			_, err := v.ValidateToken(ctx, signToken(t, key, c))
			assert.Error(t, err)
		})
	}

	t.Run("foreign key", func(t *testing.T) {
		_, err := v.ValidateToken(ctx, signToken(t, newKey(t), validClaims()))
		assert.Error(t, err)
	})

	t.Run("hmac", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = v.ValidateToken(ctx, token)
		assert.Error(t, err)
	})
}

func TestRefreshPublicKey(t *testing.T) {
	key := newKey(t)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemData := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/key" {
			http.NotFound(w, r)
			return
		}
		w.Write(pemData)
	}))
	defer srv.Close()

	cfg := &config.Config{JWT: config.JWTConfig{Issuer: testIssuer, PublicKeyURL: srv.URL + "/key", PublicKeyRefreshHrs: 1}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v, err := NewJWTValidator(ctx, cfg, nil, logging.Discard())
	require.NoError(t, err)
	_, err = v.ValidateToken(ctx, signToken(t, key, validClaims()))
	assert.NoError(t, err)

	cfg.JWT.PublicKeyURL = srv.URL + "/missing"
	_, err = NewJWTValidator(ctx, cfg, nil, logging.Discard())
	assert.Error(t, err)
}

func TestParsePublicKeyRejectsGarbage(t *testing.T) {
	_, err := parsePublicKey([]byte("not a key"))
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Sec-WebSocket-Protocol", "access_token, abc")
	assert.Equal(t, "abc", extractTokenFromHeader(r))

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer def")
	assert.Equal(t, "def", extractTokenFromHeader(r))

	r = httptest.NewRequest(http.MethodGet, "/ws?token=ghi", nil)
	assert.Equal(t, "ghi", extractTokenFromHeader(r))

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.Empty(t, extractTokenFromHeader(r))
}
