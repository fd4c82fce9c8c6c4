package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Actions a mailed link can authorise.
const (
	ActionVerifyEmail = "signup"
	ActionRecovery    = "recovery"
)

// GenerateActionToken mints a single-purpose token for a mailed link. The
// action goes into the audience so the token is useless as an access token.
func GenerateActionToken(userID, action string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{action},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
	})
	return token.SignedString(secretKey)
}

// ParseActionToken returns the user id of a token minted for action.
func ParseActionToken(tokenString, action string, secretKey []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(action),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}
