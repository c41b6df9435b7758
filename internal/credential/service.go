package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/golang-jwt/jwt/v5"
)

type Status string

const (
	StatusValid   Status = "valid"
	StatusRevoked Status = "revoked"
	StatusExpired Status = "expired"
)

const (
	ReasonInvalidToken    = "Invalid token"
	ReasonTokenExpired    = "Token expired"
	ReasonLicenseNotFound = "License not found"
	ReasonLicenseRevoked  = "License revoked"
	ReasonLicenseExpired  = "License expired"
)

type Activation struct {
	Status    Status
	Token     string
	ExpiresAt time.Time
}

type Verification struct {
	Valid     bool
	Reason    string
	Key       string
	Owner     string
	ExpiresAt time.Time
}

// LicenseFinder is the read side of the lifecycle manager used by the
// issuer. It returns licenses.ErrNotFound for unknown keys.
type LicenseFinder interface {
	Lookup(ctx context.Context, key string) (licenses.License, error)
}

type Service struct {
	licenses LicenseFinder
	method   jwt.SigningMethod
	secret   []byte
	now      func() time.Time
}

func NewService(finder LicenseFinder, config Config) (*Service, error) {
	method, err := config.signingMethod()
	if err != nil {
		return nil, err
	}
	return &Service{
		licenses: finder,
		method:   method,
		secret:   []byte(config.Secret),
		now:      time.Now,
	}, nil
}

// WithClock replaces the time source used for expiry checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Activate exchanges a license key for a signed token. Revoked and expired
// licenses produce a terminal status without a token. Unknown keys return
// licenses.ErrNotFound.
func (s *Service) Activate(ctx context.Context, key string) (Activation, error) {
	license, err := s.licenses.Lookup(ctx, key)
	if err != nil {
		return Activation{}, err
	}

	if license.Revoked {
		slog.Warn("Activation attempt on revoked license", "key", key)
		return Activation{Status: StatusRevoked, ExpiresAt: license.ExpiresAt}, nil
	}
	if license.Expired(s.now()) {
		slog.Warn("Activation attempt on expired license", "key", key, "expires_at", license.ExpiresAt)
		return Activation{Status: StatusExpired, ExpiresAt: license.ExpiresAt}, nil
	}

	token, err := generateToken(s.method, s.secret, license.Key, license.Owner, license.ExpiresAt)
	if err != nil {
		return Activation{}, fmt.Errorf("generate token: %w", err)
	}

	slog.Info("License activated", "key", key, "expires_at", license.ExpiresAt)
	return Activation{
		Status:    StatusValid,
		Token:     token,
		ExpiresAt: license.ExpiresAt,
	}, nil
}

// Verify checks a token's signature and embedded expiry, then re-reads the
// license so that revocation after issuance takes effect immediately. Every
// credential failure is reported in the returned Verification; only store
// failures are returned as errors.
func (s *Service) Verify(ctx context.Context, token string) (Verification, error) {
	claims, err := validateToken(s.method, s.secret, token, s.now)
	if err != nil {
		if errors.Is(err, errTokenExpired) {
			return invalid(ReasonTokenExpired), nil
		}
		slog.Debug("Token validation failed", "error", err)
		return invalid(ReasonInvalidToken), nil
	}

	license, err := s.licenses.Lookup(ctx, claims.Key)
	if err != nil {
		if errors.Is(err, licenses.ErrNotFound) {
			return invalid(ReasonLicenseNotFound), nil
		}
		return Verification{}, err
	}

	if license.Revoked {
		return invalid(ReasonLicenseRevoked), nil
	}
	if license.Expired(s.now()) {
		return invalid(ReasonLicenseExpired), nil
	}

	return Verification{
		Valid:     true,
		Key:       license.Key,
		Owner:     license.Owner,
		ExpiresAt: license.ExpiresAt,
	}, nil
}

func invalid(reason string) Verification {
	return Verification{Valid: false, Reason: reason}
}
