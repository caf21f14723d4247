package store

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore is a Store backed by BadgerDB. Badger locks its directory,
// so it cannot observe other processes and does not implement Watcher.
type BadgerStore struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool
}

// NewBadgerStore opens a Badger database.
func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("badger store needs a directory")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{})
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{})
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Load implements Store.
func (b *BadgerStore) Load(key string) (string, bool, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return "", false, nil
	case errors.Is(err, badger.ErrDBClosed):
		return "", false, ErrClosed
	case err != nil:
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(val), true, nil
}

// Save implements Store.
func (b *BadgerStore) Save(key, value string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// badgerLogger routes badger's warnings and errors to the application log
// and drops its chatter.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...interface{})   { log.Errorf("badger: "+f, v...) }
func (badgerLogger) Warningf(f string, v ...interface{}) { log.Warnf("badger: "+f, v...) }
func (badgerLogger) Infof(string, ...interface{})        {}
func (badgerLogger) Debugf(string, ...interface{})       {}
