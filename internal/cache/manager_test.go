package cache

import (
	"bytes"
	"testing"
)

func TestManager_PromotesDiskHits(t *testing.T) {
	config := CacheConfig{
		MemoryCapacity:   1024,
		DiskCapacity:     10240,
		DiskPath:         t.TempDir(),
		CompressionLevel: 3,
	}
	m, err := NewManager(config)
	if err != nil {
		t.Fatalf("Failed to create cache manager: %v", err)
	}
	defer m.Close()

	value := []byte("test-value")
	if err := m.Put("k", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Drop L1 so the next read must come from disk.
	m.l1Memory.Clear()
	got, ok := m.Get("k")
	if !ok || !bytes.Equal(got, value) {
		t.Fatalf("Get() = %q, %v", got, ok)
	}

	mem, disk := m.Stats()
	if disk.Hits != 1 {
		t.Errorf("disk hits = %d, want 1", disk.Hits)
	}
	if mem.ItemCount != 1 {
		t.Errorf("expected promotion into memory, items = %d", mem.ItemCount)
	}
}

func TestManager_LargeItemsGoToDisk(t *testing.T) {
	m, err := NewManager(CacheConfig{MemoryCapacity: 4, DiskCapacity: 1 << 20, DiskPath: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if err := m.Put("k", []byte("bigger than memory")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok := m.Get("k"); !ok {
		t.Error("expected disk hit")
	}
}

func TestManager_MemoryOnly(t *testing.T) {
	m, err := NewManager(CacheConfig{MemoryCapacity: 1024})
	if err != nil {
		t.Fatal(err)
	}
	_ = m.Put("k", []byte("v"))
	if _, ok := m.Get("k"); !ok {
		t.Error("expected memory hit")
	}
	if err := m.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("k"); ok {
		t.Error("expected miss after clear")
	}
}

func TestKey(t *testing.T) {
	a := Key("espeak", "th", "สวัสดี", 0.8, 1)
	if a != Key("espeak", "th", "สวัสดี", 0.8000001, 1) {
		t.Error("rate rounding should give the same key")
	}
	for _, other := range []string{
		Key("piper", "th", "สวัสดี", 0.8, 1),
		Key("espeak", "en", "สวัสดี", 0.8, 1),
		Key("espeak", "th", "สวัสดีครับ", 0.8, 1),
		Key("espeak", "th", "สวัสดี", 0.9, 1),
		Key("espeak", "th", "สวัสดี", 0.8, 1.1),
	} {
		if other == a {
			t.Errorf("expected distinct key, got %s", other)
		}
	}
}
