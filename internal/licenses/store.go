package licenses

import "context"

// Store is the persistence contract the lifecycle manager depends on.
//
// Find returns ErrNotFound when no license has the key. Insert returns
// ErrDuplicateKey when the key is already taken; this check is performed by
// the store atomically and is the only authoritative uniqueness signal.
// Update persists the revoked flag and never clears it. Any other error is a
// store failure and is propagated unchanged.
type Store interface {
	Find(ctx context.Context, key string) (License, error)
	Insert(ctx context.Context, license License) (License, error)
	Update(ctx context.Context, license License) (License, error)
	List(ctx context.Context) ([]License, error)
}
