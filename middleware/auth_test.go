package middleware

import (
	"testing"
	"time"

	"attendtrack_go/config"
	"attendtrack_go/models"

	"github.com/golang-jwt/jwt/v4"
)

func testConfig() {
	config.AppConfig = &config.Config{
		JWTSecret:    "unit-test-secret-key",
		JWTExpiresIn: time.Hour,
	}
}

// Issued tokens must carry an expiry so logout can blacklist them for
// exactly the remaining lifetime.
func TestGenerateTokenCarriesExpiry(t *testing.T) {
	testConfig()

	user := &models.User{
		BaseModel: models.BaseModel{ID: 7},
		Username:  "jamie",
		Role:      "student",
	}

	tokenString, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		t.Fatal("expected valid claims")
	}
	if claims.UserID != 7 || claims.Username != "jamie" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected an expiry claim")
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 || remaining > time.Hour {
		t.Fatalf("expected remaining lifetime within (0, 1h], got %v", remaining)
	}
}

func TestBlacklistKey(t *testing.T) {
	if got := BlacklistKey("abc"); got != "blacklist:jwt:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

// Without Redis there is no blacklist: a token must never be treated as
// revoked.
func TestTokenBlacklistedWithoutRedis(t *testing.T) {
	if tokenBlacklisted("any-token") {
		t.Fatal("expected no revocation without a Redis client")
	}
}
