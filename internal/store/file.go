package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const fileExt = ".yml"

// FileStore keeps each key in its own file, DIR/KEY.yml. Writes go to a
// temporary file that is renamed into place.
type FileStore struct {
	dir string

	mu      sync.Mutex
	written map[string]string // Last value this store wrote, per key
	closed  bool
}

// NewFileStore creates dir if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{dir: dir, written: make(map[string]string)}, nil
}

// Dir returns the storage directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+fileExt), nil
}

// Load implements Store.
func (s *FileStore) Load(key string) (string, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", false, ErrClosed
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Save implements Store.
func (s *FileStore) Save(key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	_, err = tmp.WriteString(value)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	s.written[key] = value
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// watchSettle is how long a key's file must stay quiet before a change
// to it is reported.
var watchSettle = 250 * time.Millisecond

// Watch implements Watcher. It calls fn when a key's file is changed by
// someone other than this store. A burst of events for a key is reported
// once, after the file has been quiet for watchSettle, and reports are
// limited to one per watchSettle overall. A change that leaves the content
// equal to what this store last wrote is ignored.
func (s *FileStore) Watch(ctx context.Context, fn func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	log.Debug("fsnotify watching dir", "dir", s.dir)

	var (
		limiter = rate.NewLimiter(rate.Every(watchSettle), 1)
		pending = make(map[string]struct{})
		settled <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			key, ok := s.keyFor(event.Name)
			if !ok {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			pending[key] = struct{}{}
			settled = time.After(watchSettle)

		case <-settled:
			if !limiter.Allow() {
				settled = time.After(watchSettle)
				continue
			}
			settled = nil
			for key := range pending {
				delete(pending, key)
				if s.changedExternally(key) {
					fn(key)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", s.dir, "error", err)
		}
	}
}

func (s *FileStore) keyFor(path string) (string, bool) {
	if filepath.Dir(path) != filepath.Clean(s.dir) {
		return "", false
	}
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(name, fileExt), true
}

// changedExternally reports whether key's file differs from the last value
// this store wrote, and records the new content.
func (s *FileStore) changedExternally(key string) bool {
	data, err := os.ReadFile(filepath.Join(s.dir, key+fileExt))
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last, wrote := s.written[key]
	if wrote && last == string(data) {
		return false
	}
	s.written[key] = string(data)
	return true
}
