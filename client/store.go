package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Keys mirror the two entries a browser client keeps: the signed-in user
// and the theme.
const (
	sessionKey = "session"
	themeKey   = "theme"
)

// Snapshot is the persisted part of State.
type Snapshot struct {
	Session *Session `json:"session,omitempty"`
	Theme   Theme    `json:"theme,omitempty"`
}

// Store persists a Snapshot between runs.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Close() error
}

// BadgerStore keeps state in a Badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the database in dir. An empty dir keeps
// everything in memory.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Load(_ context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		if err := get(txn, sessionKey, &snap.Session); err != nil {
			return err
		}
		return get(txn, themeKey, &snap.Theme)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Save writes the snapshot. A nil session removes the stored one.
func (s *BadgerStore) Save(_ context.Context, snap Snapshot) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if snap.Session == nil {
			if err := txn.Delete([]byte(sessionKey)); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		} else if err := set(txn, sessionKey, snap.Session); err != nil {
			return err
		}
		return set(txn, themeKey, snap.Theme)
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func get(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func set(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := txn.Set([]byte(key), data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
