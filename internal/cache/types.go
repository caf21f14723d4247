package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when cache data is corrupted
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// CacheStats holds cache performance metrics
type CacheStats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64 // Number of items in cache

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time
	LastEvict  time.Time
}

func (s *CacheStats) computeHitRate() {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
}

// CacheConfig holds configuration for a Manager.
type CacheConfig struct {
	MemoryCapacity   int64  // Bytes
	DiskCapacity     int64  // Bytes
	DiskPath         string // Directory for cache files; empty disables L2
	CompressionLevel int    // Zstd compression level (1-22, default 3)
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MemoryCapacity:   32 * 1024 * 1024,  // 32MB
		DiskCapacity:     256 * 1024 * 1024, // 256MB
		CompressionLevel: 3,
	}
}

// Key derives a cache key from everything that changes the synthesized
// audio. Rate and pitch are rounded to the step the controls use.
func Key(engine, voice, text string, rate, pitch float64) string {
	raw := fmt.Sprintf("%s\x00%s\x00%.1f\x00%.1f\x00%s", engine, voice, rate, pitch, text)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:16])
}
