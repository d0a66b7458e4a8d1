package auth

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Revoker is a denylist of token ids. Entries only need to outlive the
// token they revoke.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker keeps revoked ids in a bounded LRU local to the process.
type MemoryRevoker struct {
	entries *lru.LRU[string, time.Time]
	now     func() time.Time
}

// NewMemoryRevoker evicts entries after ttl; a zero ttl keeps them until the
// LRU is full.
func NewMemoryRevoker(size int, ttl time.Duration) *MemoryRevoker {
	if size <= 0 {
		size = 10000
	}

	return &MemoryRevoker{
		entries: lru.NewLRU[string, time.Time](size, nil, ttl),
		now:     time.Now,
	}
}

func (r *MemoryRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	if !expiresAt.IsZero() && !expiresAt.After(r.now()) {
		return nil
	}

	r.entries.Add(tokenID, expiresAt)
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	expiresAt, ok := r.entries.Get(tokenID)
	if !ok {
		return false, nil
	}

	if !expiresAt.IsZero() && !expiresAt.After(r.now()) {
		r.entries.Remove(tokenID)
		return false, nil
	}

	return true, nil
}
