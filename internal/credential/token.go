package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errTokenExpired = errors.New("token expired")
	errTokenInvalid = errors.New("invalid token")
)

// Claims is the payload of an activation token: the license key, its owner
// and the license expiry as the registered exp claim.
type Claims struct {
	Key   string `json:"key"`
	Owner string `json:"owner"`
	jwt.RegisteredClaims
}

func generateToken(method jwt.SigningMethod, secret []byte, key, owner string, expiresAt time.Time) (string, error) {
	claims := Claims{
		Key:   key,
		Owner: owner,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func validateToken(method jwt.SigningMethod, secret []byte, tokenString string, now func() time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", errTokenInvalid, err)
	}
	if !token.Valid || claims.Key == "" {
		return nil, errTokenInvalid
	}
	return claims, nil
}
