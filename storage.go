package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/lawflow/lawflow/internal/library"
	"github.com/lawflow/lawflow/internal/store"
)

// storageDir returns storage.dir, or the user data dir.
func storageDir() (string, error) {
	if dir := viper.GetString("storage.dir"); dir != "" {
		return expandPath(dir), nil
	}
	dir, err := gap.NewScope(gap.User, "lawflow").DataPath("")
	if err != nil {
		return "", fmt.Errorf("unable to find data directory: %w", err)
	}
	return dir, nil
}

// openLibrary opens the configured store and loads the library from it.
// Closing the returned store releases it.
func openLibrary() (*library.Library, store.Store, error) {
	dir, err := storageDir()
	if err != nil {
		return nil, nil, err
	}
	backend := viper.GetString("storage.backend")
	log.Debug("Opening library", "backend", backend, "dir", dir)

	s, err := store.Open(backend, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open storage: %w", err)
	}
	lib, err := library.Open(s)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("unable to load library: %w", err), s.Close())
	}
	return lib, s, nil
}

// withLibrary runs fn with the library open.
func withLibrary(fn func(*library.Library) error) error {
	lib, s, err := openLibrary()
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck
	return fn(lib)
}
