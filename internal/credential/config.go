package credential

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAlgorithm = "HS256"
	InsecureSecret   = "CHANGE_THIS_SECRET"
)

var ErrInvalidConfig = errors.New("invalid credential config")

type Config struct {
	Secret    string `mapstructure:"secret"`
	Algorithm string `mapstructure:"algorithm"`
}

func (c Config) signingMethod() (*jwt.SigningMethodHMAC, error) {
	if c.Secret == "" {
		return nil, fmt.Errorf("%w: secret is empty", ErrInvalidConfig)
	}

	alg := c.Algorithm
	if alg == "" {
		alg = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported algorithm %q (valid: HS256, HS384, HS512)", ErrInvalidConfig, alg)
	}
	return method, nil
}
