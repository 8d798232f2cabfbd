package middleware

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/models"
)

// DefaultTokenExpiry applies when no expiry is configured.
const DefaultTokenExpiry = 24 * time.Hour

const tokenIssuer = "fintrack-api"

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID string          `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 bearer tokens.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTManager creates a JWTManager. A non-positive expiry falls back to
// DefaultTokenExpiry.
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &JWTManager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Generate issues a token for user.
func (m *JWTManager) Generate(user *models.User) (string, error) {
	now := m.now()
	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates the signature, expiry and issuer of tokenString.
func (m *JWTManager) Parse(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
