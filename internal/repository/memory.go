package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimitRepository хранит счетчики в памяти процесса. Используется
// как резерв при недоступности Redis и в тестах.
type MemoryRateLimitRepository struct {
	rateLimits sync.Map // map[int64]*rateLimitEntry
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryRateLimitRepository() *MemoryRateLimitRepository {
	return &MemoryRateLimitRepository{}
}

func (r *MemoryRateLimitRepository) CheckRateLimit(ctx context.Context, callerID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(callerID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(callerID, entry)
	return entry.count <= limit, nil
}
