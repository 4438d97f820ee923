// Package badgr is an adapter for the badgerDB
package badgr

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger"

	"github.com/kodekulture/gissa-server/game/rank"
	"github.com/kodekulture/gissa-server/repository"
)

const prefix = "index:"

// IndexRepo stores rank indexes in badger, JSON encoded under "index:<key>".
type IndexRepo struct {
	db *badger.DB
}

var _ repository.IndexCache = (*IndexRepo)(nil)

// Get implements repository.IndexCache.
func (r *IndexRepo) Get(_ context.Context, key string) ([]rank.Entry, bool, error) {
	var entries []rank.Entry
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &entries)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// Put implements repository.IndexCache.
func (r *IndexRepo) Put(_ context.Context, key string, entries []rank.Entry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(prefix+key), b))
	})
}

// Keys returns the keys of all stored indexes.
func (r *IndexRepo) Keys() ([]string, error) {
	var keys []string
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(p):]))
		}
		return nil
	})
	return keys, err
}

// Drop deletes every stored index.
func (r *IndexRepo) Drop() error {
	return r.db.DropAll()
}

func New(db *badger.DB) *IndexRepo {
	return &IndexRepo{db: db}
}
