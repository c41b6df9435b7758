package licenses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/EternisAI/silo-license/internal/keygen"
	"github.com/google/uuid"
)

type Config struct {
	Prefix         string `mapstructure:"prefix"`
	BodyLength     int    `mapstructure:"body_length"`
	DaysValid      int    `mapstructure:"days_valid"`
	MaxKeyAttempts int    `mapstructure:"max_key_attempts"`
}

func DefaultConfig() Config {
	return Config{
		Prefix:         keygen.DefaultPrefix,
		BodyLength:     keygen.DefaultBodyLength,
		DaysValid:      365,
		MaxKeyAttempts: keygen.DefaultMaxAttempts,
	}
}

type CreateParams struct {
	Key       string
	Owner     string
	DaysValid int
	Note      string
	Prefix    string
}

type Service struct {
	store     Store
	config    Config
	generator *keygen.Generator
	now       func() time.Time
}

func NewService(store Store, config Config) *Service {
	defaults := DefaultConfig()
	if config.Prefix == "" {
		config.Prefix = defaults.Prefix
	}
	if config.DaysValid < 1 {
		config.DaysValid = defaults.DaysValid
	}

	return &Service{
		store:     store,
		config:    config,
		generator: keygen.NewGenerator(config.BodyLength, config.MaxKeyAttempts),
		now:       time.Now,
	}
}

// WithClock replaces the time source used for creation and listing.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Now() time.Time {
	return s.now().UTC()
}

func (s *Service) Config() Config {
	return s.config
}

// Create persists a new license. When params.Key is empty a key is generated
// with params.Prefix (or the configured default). A zero DaysValid uses the
// configured default; a negative one is rejected.
func (s *Service) Create(ctx context.Context, params CreateParams) (License, error) {
	if params.DaysValid == 0 {
		params.DaysValid = s.config.DaysValid
	}
	if params.DaysValid < 0 {
		return License{}, fmt.Errorf("%w: days_valid must be positive", ErrInvalidInput)
	}

	key := strings.TrimSpace(params.Key)
	if key == "" {
		prefix := strings.TrimSpace(params.Prefix)
		if prefix == "" {
			prefix = s.config.Prefix
		}

		generated, err := s.generator.Unique(ctx, prefix, s.exists)
		if err != nil {
			if errors.Is(err, keygen.ErrInvalidPrefix) {
				return License{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return License{}, err
		}
		key = generated
	}

	owner := strings.TrimSpace(params.Owner)
	if owner == "" {
		owner = DefaultOwner
	}

	createdAt := s.Now().Truncate(time.Microsecond)
	license := License{
		ID:        uuid.NewString(),
		Key:       key,
		Owner:     owner,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.AddDate(0, 0, params.DaysValid),
		Revoked:   false,
		Note:      params.Note,
	}

	created, err := s.store.Insert(ctx, license)
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			slog.Warn("License key already exists", "key", key)
			return License{}, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		return License{}, fmt.Errorf("insert license: %w", err)
	}

	slog.Info("License created", "key", created.Key, "owner", created.Owner, "expires_at", created.ExpiresAt)
	return created, nil
}

func (s *Service) Lookup(ctx context.Context, key string) (License, error) {
	license, err := s.store.Find(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return License{}, ErrNotFound
		}
		return License{}, fmt.Errorf("find license: %w", err)
	}
	return license, nil
}

// Revoke marks the license as revoked. Revoking an already revoked license
// succeeds and leaves it revoked.
func (s *Service) Revoke(ctx context.Context, key string) (License, error) {
	license, err := s.Lookup(ctx, key)
	if err != nil {
		return License{}, err
	}

	license.Revoked = true
	updated, err := s.store.Update(ctx, license)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return License{}, ErrNotFound
		}
		return License{}, fmt.Errorf("update license: %w", err)
	}

	slog.Info("License revoked", "key", updated.Key)
	return updated, nil
}

// List returns every license, or only those neither revoked nor expired at
// the time of the call when activeOnly is set.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]License, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	if !activeOnly {
		return all, nil
	}

	now := s.Now()
	result := make([]License, 0, len(all))
	for _, l := range all {
		if l.Active(now) {
			result = append(result, l)
		}
	}
	return result, nil
}

func (s *Service) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.store.Find(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}
