package cache

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Manager coordinates the memory and disk levels. Hits in L2 are promoted
// to L1.
type Manager struct {
	l1Memory *MemoryCache
	l2Disk   *DiskCache
}

// NewManager creates a cache manager. The disk level is skipped when
// config.DiskPath is empty.
func NewManager(config CacheConfig) (*Manager, error) {
	m := &Manager{l1Memory: NewMemoryCache(config.MemoryCapacity)}
	if config.DiskPath == "" {
		return m, nil
	}

	disk, err := NewDiskCache(config.DiskPath, config.DiskCapacity, config.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}
	m.l2Disk = disk
	return m, nil
}

// Get checks L1, then L2.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.l1Memory.Get(key); ok {
		return data, true
	}
	if m.l2Disk == nil {
		return nil, false
	}
	data, ok := m.l2Disk.Get(key)
	if ok {
		_ = m.l1Memory.Put(key, data)
	}
	return data, ok
}

// Put stores value in both levels. An item too large for memory still goes
// to disk.
func (m *Manager) Put(key string, value []byte) error {
	if err := m.l1Memory.Put(key, value); err != nil {
		log.Debug("Skipping memory cache", "key", key, "err", err)
	}
	if m.l2Disk == nil {
		return nil
	}
	return m.l2Disk.Put(key, value)
}

// Clear empties both levels.
func (m *Manager) Clear() error {
	m.l1Memory.Clear()
	if m.l2Disk == nil {
		return nil
	}
	return m.l2Disk.Clear()
}

// Stats returns statistics for each level. Disk stats are zero when the
// disk level is disabled.
func (m *Manager) Stats() (memory, disk CacheStats) {
	memory = m.l1Memory.Stats()
	if m.l2Disk != nil {
		disk = m.l2Disk.Stats()
	}
	return memory, disk
}

// Close releases the disk level.
func (m *Manager) Close() error {
	if m.l2Disk == nil {
		return nil
	}
	return m.l2Disk.Close()
}
