// Package storetest holds behaviour tests shared by every licenses.Store
// implementation.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises the licenses.Store contract. newStore must return an empty
// store for every call.
func Run(t *testing.T, newStore func(t *testing.T) licenses.Store) {
	t.Run("InsertAndFind", func(t *testing.T) { testInsertAndFind(t, newStore(t)) })
	t.Run("FindNotFound", func(t *testing.T) { testFindNotFound(t, newStore(t)) })
	t.Run("DuplicateKey", func(t *testing.T) { testDuplicateKey(t, newStore(t)) })
	t.Run("RevokeMonotonic", func(t *testing.T) { testRevokeMonotonic(t, newStore(t)) })
	t.Run("UpdateNotFound", func(t *testing.T) { testUpdateNotFound(t, newStore(t)) })
	t.Run("List", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("ConcurrentInsert", func(t *testing.T) { testConcurrentInsert(t, newStore(t)) })
}

func NewLicense(key string, createdAt time.Time) licenses.License {
	createdAt = createdAt.UTC().Truncate(time.Microsecond)
	return licenses.License{
		ID:        uuid.NewString(),
		Key:       key,
		Owner:     "Test User",
		CreatedAt: createdAt,
		ExpiresAt: createdAt.AddDate(0, 0, 30),
	}
}

func testInsertAndFind(t *testing.T, s licenses.Store) {
	ctx := context.Background()
	l := NewLicense("PRO-INSERT", time.Now())
	l.Note = "first customer"

	created, err := s.Insert(ctx, l)
	require.NoError(t, err)
	assert.Equal(t, l, created)

	found, err := s.Find(ctx, "PRO-INSERT")
	require.NoError(t, err)
	assert.Equal(t, l, found)
}

func testFindNotFound(t *testing.T, s licenses.Store) {
	_, err := s.Find(context.Background(), "PRO-MISSING")
	assert.ErrorIs(t, err, licenses.ErrNotFound)
}

func testDuplicateKey(t *testing.T, s licenses.Store) {
	ctx := context.Background()

	original := NewLicense("TRIAL-1", time.Now())
	_, err := s.Insert(ctx, original)
	require.NoError(t, err)

	dup := NewLicense("TRIAL-1", time.Now().Add(time.Hour))
	dup.Owner = "someone else"
	_, err = s.Insert(ctx, dup)
	assert.ErrorIs(t, err, licenses.ErrDuplicateKey)

	found, err := s.Find(ctx, "TRIAL-1")
	require.NoError(t, err)
	assert.Equal(t, original, found)
}

func testRevokeMonotonic(t *testing.T, s licenses.Store) {
	ctx := context.Background()
	l := NewLicense("PRO-REVOKE", time.Now())
	_, err := s.Insert(ctx, l)
	require.NoError(t, err)

	l.Revoked = true
	updated, err := s.Update(ctx, l)
	require.NoError(t, err)
	assert.True(t, updated.Revoked)

	l.Revoked = false
	updated, err = s.Update(ctx, l)
	require.NoError(t, err)
	assert.True(t, updated.Revoked)

	found, err := s.Find(ctx, "PRO-REVOKE")
	require.NoError(t, err)
	assert.True(t, found.Revoked)
	assert.Equal(t, l.ExpiresAt, found.ExpiresAt)
}

func testUpdateNotFound(t *testing.T, s licenses.Store) {
	l := NewLicense("PRO-NOPE", time.Now())
	l.Revoked = true
	_, err := s.Update(context.Background(), l)
	assert.ErrorIs(t, err, licenses.ErrNotFound)
}

func testList(t *testing.T, s licenses.Store) {
	ctx := context.Background()
	base := time.Now()

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for i, key := range []string{"PRO-B", "PRO-A", "PRO-C"} {
		_, err := s.Insert(ctx, NewLicense(key, base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	all, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "PRO-B", all[0].Key)
	assert.Equal(t, "PRO-A", all[1].Key)
	assert.Equal(t, "PRO-C", all[2].Key)
}

func testConcurrentInsert(t *testing.T, s licenses.Store) {
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		success   atomic.Int32
		duplicate atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			l := NewLicense("RACE-1", time.Now())
			l.Owner = fmt.Sprintf("owner-%d", id)
			_, err := s.Insert(ctx, l)
			switch {
			case err == nil:
				success.Add(1)
			case assert.ErrorIs(t, err, licenses.ErrDuplicateKey):
				duplicate.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())
	assert.Equal(t, int32(19), duplicate.Load())
}
