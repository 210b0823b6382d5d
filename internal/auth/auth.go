package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Owner is the single account allowed to use the ledger.
type Owner struct {
	Username     string
	PasswordHash string
}

// TokenGenerator issues and verifies access tokens.
type TokenGenerator interface {
	GenerateAccessToken(owner string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Claims represents JWT token claims
type Claims struct {
	Owner string `json:"owner"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
	Issuer         string
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: ttl,
		Issuer:         "personal-ledger",
	}
}
