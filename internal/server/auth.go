package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"

	"github.com/gravitas-games/shoptiles/internal/config"
	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/pkg/models"
)

// JWTValidator handles JWT token validation
type JWTValidator struct {
	jwt             config.JWTConfig
	blacklistPrefix string
	publicKey       *ecdsa.PublicKey
	keyMu           sync.RWMutex
	redis           *redis.Client
	client          *http.Client
	monitor         *logging.Monitor
}

// Claims represents JWT token claims from the login server
type Claims struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	UserType    string `json:"user_type"`
	AuthMethod  string `json:"auth_method"`
	Permissions int64  `json:"permissions"`
	Activated   int64  `json:"activated"`
	jwt.RegisteredClaims
}

// NewJWTValidator creates a validator and fetches the signing key. A nil
// redis client disables the blacklist check.
func NewJWTValidator(ctx context.Context, cfg *config.Config, redisClient *redis.Client, m *logging.Monitor) (*JWTValidator, error) {
	validator := &JWTValidator{
		jwt:             cfg.JWT,
		blacklistPrefix: cfg.Redis.BlacklistPrefix,
		redis:           redisClient,
		client:          &http.Client{Timeout: 10 * time.Second},
		monitor:         m,
	}

	// Fetch public key from the login server
	if err := validator.RefreshPublicKey(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch public key: %w", err)
	}

	// Start background key refresh
	go validator.periodicKeyRefresh(ctx)

	m.Infof("JWT validator initialized")
	return validator, nil
}

// newValidatorWithKey builds a validator around a known key
func newValidatorWithKey(cfg config.JWTConfig, key *ecdsa.PublicKey, redisClient *redis.Client, m *logging.Monitor) *JWTValidator {
	return &JWTValidator{jwt: cfg, publicKey: key, redis: redisClient, client: http.DefaultClient, monitor: m}
}

// RefreshPublicKey fetches the public key from the login server
func (v *JWTValidator) RefreshPublicKey(ctx context.Context) error {
	v.monitor.Debugf("Fetching public key from %s", v.jwt.PublicKeyURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwt.PublicKeyURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build key request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch public key: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("public key endpoint returned status %d", resp.StatusCode)
	}

	keyData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read public key: %w", err)
	}

	key, err := parsePublicKey(keyData)
	if err != nil {
		return err
	}

	v.keyMu.Lock()
	v.publicKey = key
	v.keyMu.Unlock()

	v.monitor.Debugf("Public key refreshed successfully")
	return nil
}

func parsePublicKey(data []byte) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	ecdsaKey, ok := pubKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not ECDSA")
	}
	return ecdsaKey, nil
}

// periodicKeyRefresh refreshes the public key until ctx is done
func (v *JWTValidator) periodicKeyRefresh(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(v.jwt.PublicKeyRefreshHrs) * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := v.RefreshPublicKey(ctx); err != nil {
				v.monitor.Warnf("Failed to refresh public key: %v", err)
			}
		}
	}
}

// ValidateToken validates a JWT token and returns player information
func (v *JWTValidator) ValidateToken(ctx context.Context, tokenString string) (*models.Player, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		v.keyMu.RLock()
		defer v.keyMu.RUnlock()
		return v.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != v.jwt.Issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", v.jwt.Issuer, claims.Issuer)
	}

	if claims.Activated == 0 {
		return nil, fmt.Errorf("user not activated")
	}
	if claims.Activated == -1 {
		return nil, fmt.Errorf("user is banned")
	}

	userIDStr := strconv.FormatInt(claims.UserID, 10)
	if v.redis != nil {
		blacklistKey := v.blacklistPrefix + userIDStr
		isBlacklisted, err := v.redis.Exists(ctx, blacklistKey).Result()
		if err != nil {
			// Redis being down does not fail authentication
			v.monitor.Warnf("Failed to check blacklist: %v", err)
		} else if isBlacklisted > 0 {
			return nil, fmt.Errorf("token is blacklisted")
		}
	}

	return &models.Player{
		ID:          userIDStr,
		Username:    claims.Username,
		Email:       claims.Email,
		UserType:    claims.UserType,
		Permissions: claims.Permissions,
		Activated:   claims.Activated,
		AuthMethod:  claims.AuthMethod,
	}, nil
}

// extractTokenFromHeader extracts JWT token from WebSocket connection header
func extractTokenFromHeader(r *http.Request) string {
	// Sec-WebSocket-Protocol: "access_token, <token>"
	if protocols := r.Header.Get("Sec-WebSocket-Protocol"); protocols != "" {
		parts := splitAndTrim(protocols, ",")
		if len(parts) == 2 && parts[0] == "access_token" {
			return parts[1]
		}
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	// Query parameter (less secure, but supported)
	return r.URL.Query().Get("token")
}

// splitAndTrim splits a string and drops empty parts
func splitAndTrim(s, sep string) []string {
	var result []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
