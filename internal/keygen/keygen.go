package keygen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
)

const (
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	DefaultPrefix      = "PRO"
	DefaultBodyLength  = 12
	DefaultMaxAttempts = 5
)

var (
	ErrKeyGenerationExhausted = errors.New("unable to generate a unique license key")
	ErrInvalidPrefix          = errors.New("invalid key prefix")
)

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Lookup reports whether a license with the given key already exists.
type Lookup func(ctx context.Context, key string) (bool, error)

// Generate returns prefix + "-" + bodyLength characters drawn from Alphabet
// using crypto/rand.
func Generate(prefix string, bodyLength int) (string, error) {
	if prefix == "" || strings.ContainsAny(prefix, " \t\r\n") {
		return "", ErrInvalidPrefix
	}
	if bodyLength < 1 {
		return "", fmt.Errorf("invalid body length %d", bodyLength)
	}

	var sb strings.Builder
	sb.Grow(len(prefix) + 1 + bodyLength)
	sb.WriteString(prefix)
	sb.WriteByte('-')
	for i := 0; i < bodyLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		sb.WriteByte(Alphabet[n.Int64()])
	}
	return sb.String(), nil
}

// Generator produces store-unique keys with a bounded number of attempts.
type Generator struct {
	BodyLength  int
	MaxAttempts int
}

func NewGenerator(bodyLength, maxAttempts int) *Generator {
	if bodyLength < 1 {
		bodyLength = DefaultBodyLength
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{
		BodyLength:  bodyLength,
		MaxAttempts: maxAttempts,
	}
}

// Unique generates candidates until lookup reports one as unused. After
// MaxAttempts collisions it fails with ErrKeyGenerationExhausted. Errors
// from lookup are returned as-is without further attempts.
//
// The returned key may still be taken by a concurrent writer before it is
// inserted; the store's uniqueness constraint is authoritative.
func (g *Generator) Unique(ctx context.Context, prefix string, lookup Lookup) (string, error) {
	for attempt := 1; attempt <= g.MaxAttempts; attempt++ {
		candidate, err := Generate(prefix, g.BodyLength)
		if err != nil {
			return "", err
		}

		exists, err := lookup(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check key uniqueness: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		slog.Debug("Generated license key collided", "prefix", prefix, "attempt", attempt)
	}

	slog.Error("License key generation exhausted", "prefix", prefix, "attempts", g.MaxAttempts)
	return "", fmt.Errorf("%w after %d attempts", ErrKeyGenerationExhausted, g.MaxAttempts)
}
