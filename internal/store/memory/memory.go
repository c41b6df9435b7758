package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/EternisAI/silo-license/internal/licenses"
)

// Store keeps licenses in process memory. It is used by tests and by the
// memory:// database URL.
type Store struct {
	mu       sync.RWMutex
	licenses map[string]*licenses.License
}

func NewStore() *Store {
	return &Store{
		licenses: make(map[string]*licenses.License),
	}
}

func (s *Store) Find(_ context.Context, key string) (licenses.License, error) {
	s.mu.RLock()
	l, exists := s.licenses[key]
	s.mu.RUnlock()

	if !exists {
		return licenses.License{}, licenses.ErrNotFound
	}
	return *l, nil
}

func (s *Store) Insert(_ context.Context, license licenses.License) (licenses.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.licenses[license.Key]; exists {
		return licenses.License{}, licenses.ErrDuplicateKey
	}

	stored := license
	s.licenses[license.Key] = &stored
	return stored, nil
}

func (s *Store) Update(_ context.Context, license licenses.License) (licenses.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.licenses[license.Key]
	if !exists {
		return licenses.License{}, licenses.ErrNotFound
	}
	l.Revoked = l.Revoked || license.Revoked
	return *l, nil
}

func (s *Store) List(_ context.Context) ([]licenses.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]licenses.License, 0, len(s.licenses))
	for _, l := range s.licenses {
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Key < result[j].Key
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
