package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const fileExt = ".pcm.zst"

// DiskCache implements an L2 disk cache of zstd-compressed files. The
// directory itself is the index: entries are rebuilt from it on open, and
// file modification times order eviction.
type DiskCache struct {
	basePath string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskCacheEntry

	mu    sync.Mutex
	stats CacheStats
}

type diskCacheEntry struct {
	size       int64 // Size on disk (compressed)
	lastAccess time.Time
}

// NewDiskCache opens or creates a disk cache at basePath.
func NewDiskCache(basePath string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if compressionLevel <= 0 {
		compressionLevel = 3
	}

	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	dc := &DiskCache{
		basePath: basePath,
		capacity: capacity,
		encoder:  encoder,
		decoder:  decoder,
		index:    make(map[string]*diskCacheEntry),
		stats:    CacheStats{Capacity: capacity},
	}
	if err := dc.scan(); err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	return dc, nil
}

// Get retrieves and decompresses a value.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	path := dc.filePath(key)
	compressed, err := os.ReadFile(path)
	if err == nil {
		var data []byte
		data, err = dc.decoder.DecodeAll(compressed, nil)
		if err == nil {
			now := time.Now()
			entry.lastAccess = now
			_ = os.Chtimes(path, now, now)
			dc.stats.Hits++
			dc.stats.LastAccess = now
			return data, true
		}
		err = fmt.Errorf("%w: %w", ErrCacheCorrupted, err)
	}

	log.Debug("Dropping unreadable cache entry", "key", key, "err", err)
	dc.remove(key)
	dc.stats.Misses++
	return nil, false
}

// Put compresses and stores a value.
func (dc *DiskCache) Put(key string, value []byte) error {
	data := dc.encoder.EncodeAll(value, nil)
	diskSize := int64(len(data))

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if diskSize > dc.capacity {
		return ErrItemTooLarge
	}
	if _, ok := dc.index[key]; ok {
		dc.remove(key)
	}
	for dc.size+diskSize > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	if err := writeFile(dc.filePath(key), data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	dc.index[key] = &diskCacheEntry{size: diskSize, lastAccess: time.Now()}
	dc.size += diskSize
	return nil
}

// Clear removes all cache files.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	var errs []error
	for key := range dc.index {
		if err := os.Remove(dc.filePath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	dc.index = make(map[string]*diskCacheEntry)
	dc.size = 0
	return errors.Join(errs...)
}

// Stats returns cache statistics.
func (dc *DiskCache) Stats() CacheStats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	stats := dc.stats
	stats.Size = dc.size
	stats.ItemCount = int64(len(dc.index))
	stats.computeHitRate()
	return stats
}

// Path returns the cache directory.
func (dc *DiskCache) Path() string { return dc.basePath }

// Close releases the zstd codecs.
func (dc *DiskCache) Close() error {
	dc.decoder.Close()
	return dc.encoder.Close()
}

func (dc *DiskCache) filePath(key string) string {
	return filepath.Join(dc.basePath, key+fileExt)
}

func (dc *DiskCache) scan() error {
	entries, err := os.ReadDir(dc.basePath)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		key := strings.TrimSuffix(name, fileExt)
		dc.index[key] = &diskCacheEntry{size: info.Size(), lastAccess: info.ModTime()}
		dc.size += info.Size()
	}
	return nil
}

func (dc *DiskCache) remove(key string) {
	entry, ok := dc.index[key]
	if !ok {
		return
	}
	_ = os.Remove(dc.filePath(key))
	dc.size -= entry.size
	delete(dc.index, key)
}

func (dc *DiskCache) evictOldest() {
	keys := make([]string, 0, len(dc.index))
	for k := range dc.index {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return
	}
	sort.Slice(keys, func(i, j int) bool {
		return dc.index[keys[i]].lastAccess.Before(dc.index[keys[j]].lastAccess)
	})
	dc.remove(keys[0])
	dc.stats.Evictions++
	dc.stats.LastEvict = time.Now()
}

// writeFile writes to a temp file first, then renames it into place.
func writeFile(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	return os.Rename(tempPath, path)
}
