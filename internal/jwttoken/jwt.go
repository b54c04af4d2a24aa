// Package jwttoken validates the access tokens minted by the identity
// provider in front of this service. Token issuance is not this service's
// concern; only HMAC validation of inbound bearer tokens happens here.
package jwttoken

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"capture-gateway/internal/platform/middleware"
	dErrors "capture-gateway/pkg/domain-errors"
)

// Claims represents the JWT claims carried by reviewer access tokens.
type Claims struct {
	ReviewerID string `json:"reviewer_id"`
	ClientID   string `json:"client_id"`
	jwt.RegisteredClaims
}

// Validator validates HMAC-signed access tokens.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a token, returning the middleware claims
// on success. Satisfies middleware.JWTValidator.
func (v *Validator) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.JWTClaims{
		ReviewerID: claims.ReviewerID,
		ClientID:   claims.ClientID,
	}, nil
}
