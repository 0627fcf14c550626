package auth

import (
	"errors"
	"fmt"
	"time"

	"admin-rbac/models"

	"github.com/golang-jwt/jwt/v4"
)

// CustomClaims represents the claims of an administrator token.
type CustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	App      string `json:"app"` // namespace the token was issued for
	jwt.RegisteredClaims
}

// TokenManager signs and validates administrator tokens.
type TokenManager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewTokenManager(signingKey []byte, issuer string) *TokenManager {
	return &TokenManager{signingKey: signingKey, issuer: issuer, ttl: 24 * time.Hour}
}

// GenerateToken creates a new JWT for an administrator of app.
func (m *TokenManager) GenerateToken(app string, user *models.User) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		App:      app,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   "admin-auth",
			Audience:  []string{app},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// ParseAndValidateToken : used for go-restful filters and gRPC interceptors
func (m *TokenManager) ParseAndValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.signingKey, nil
	})

	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			if ve.Errors&jwt.ValidationErrorMalformed != 0 {
				return nil, errors.New("malformed token")
			} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
				return nil, errors.New("token is either expired or not active yet")
			} else if ve.Errors&jwt.ValidationErrorSignatureInvalid != 0 {
				return nil, errors.New("invalid token signature")
			}
		}
		return nil, fmt.Errorf("couldn't handle this token: %w", err)
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
