package repository

import (
	"context"
	"sync"
	"time"

	"github.com/emryildiz/barberbot/internal/models"
)

// MemoryMessageGuard is the in-process fallback when Redis is unreachable.
// Dedup does not survive restarts; acceptable for the failover window.
type MemoryMessageGuard struct {
	rateLimits sync.Map
	seen       sync.Map
}

func NewMemoryMessageGuard() *MemoryMessageGuard {
	return &MemoryMessageGuard{}
}

type rateLimitEntry struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
}

func (r *MemoryMessageGuard) AllowMessage(ctx context.Context, phone string) (bool, error) {
	val, _ := r.rateLimits.LoadOrStore(phone, &rateLimitEntry{})
	entry := val.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	if now.After(entry.expiresAt) {
		entry.count = 1
		entry.expiresAt = now.Add(models.RateLimitWindowSeconds * time.Second)
	} else {
		entry.count++
	}
	return entry.count <= models.RateLimitMessages, nil
}

type seenEntry struct {
	expiresAt time.Time
}

func (r *MemoryMessageGuard) SeenMessage(ctx context.Context, messageID string) (bool, error) {
	now := time.Now()
	val, loaded := r.seen.LoadOrStore(messageID, &seenEntry{
		expiresAt: now.Add(models.MessageDedupTTLSeconds * time.Second),
	})
	if !loaded {
		return false, nil
	}
	entry := val.(*seenEntry)
	if now.After(entry.expiresAt) {
		r.seen.Store(messageID, &seenEntry{expiresAt: now.Add(models.MessageDedupTTLSeconds * time.Second)})
		return false, nil
	}
	return true, nil
}
