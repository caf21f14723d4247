package store

import (
	"errors"
	"testing"
)

// testStore runs the behavior every backend shares.
func testStore(t *testing.T, s Store) {
	t.Helper()

	if _, ok, err := s.Load("articles"); err != nil || ok {
		t.Fatalf("Load(missing) = ok %v, err %v", ok, err)
	}

	if err := s.Save("articles", "มาตรา 1"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	v, ok, err := s.Load("articles")
	if err != nil || !ok || v != "มาตรา 1" {
		t.Fatalf("Load() = %q, %v, %v", v, ok, err)
	}

	if err := s.Save("articles", "replaced"); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := s.Load("articles"); v != "replaced" {
		t.Errorf("Load() after overwrite = %q", v)
	}

	if err := s.Save("next_id", "4"); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := s.Load("articles"); v != "replaced" {
		t.Errorf("keys interfere: %q", v)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStore(t, s)

	_ = s.Close()
	if err := s.Save("k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("Save() after close = %v", err)
	}
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestBadgerStorePersists(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBadgerStore(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save("categories", "อื่นๆ"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBadgerStore(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if v, ok, _ := reopened.Load("categories"); !ok || v != "อื่นๆ" {
		t.Errorf("Load() after reopen = %q, %v", v, ok)
	}
}

func TestOpen(t *testing.T) {
	for _, backend := range []string{"", BackendFile, BackendMemory} {
		s, err := Open(backend, t.TempDir())
		if err != nil {
			t.Fatalf("Open(%q) error = %v", backend, err)
		}
		_ = s.Close()
	}
	if _, err := Open("sqlite", t.TempDir()); err == nil {
		t.Error("expected error for unknown backend")
	}
}
