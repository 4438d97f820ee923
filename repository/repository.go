// Package repository stores rank indexes so that a secret word is scored against
// the vocabulary only once.
package repository

import (
	"context"
	"strconv"

	"github.com/kodekulture/gissa-server/game/rank"
)

type IndexCache interface {
	// Get returns the entries stored under key, ok is false when there are none
	Get(ctx context.Context, key string) (entries []rank.Entry, ok bool, err error)

	// Put stores the entries of a rank index under key
	Put(ctx context.Context, key string, entries []rank.Entry) error
}

// Key identifies the index of secret built over the vector store with the given fingerprint.
func Key(fingerprint uint64, secret string) string {
	return strconv.FormatUint(fingerprint, 16) + ":" + secret
}
