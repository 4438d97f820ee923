// Package rank orders the whole vocabulary by closeness to a secret word.
package rank

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync/atomic"

	"github.com/lordvidex/errs"
	"github.com/rs/zerolog/log"

	"github.com/kodekulture/gissa-server/game/vector"
)

const (
	// Epsilon is the tolerance used when matching a recomputed score against the index.
	Epsilon = 1e-4

	// MaxRank caps the rank returned for a score that is not in the index.
	MaxRank = 50000
)

var (
	ErrEmptyStore    = errs.B().Code(errs.InvalidArgument).Msg("vector store is empty").Err()
	ErrUnknownSecret = errs.B().Code(errs.InvalidArgument).Msg("secret word is not in the vector store").Err()
	ErrUnsorted      = errs.B().Code(errs.InvalidArgument).Msg("entries are not sorted by score").Err()
)

// Entry is a vocabulary word and its distance to the secret.
type Entry struct {
	Word  string  `json:"w"`
	Score float64 `json:"s"`
}

// Index holds every vocabulary word except the secret, sorted by ascending score.
// The secret has rank 1, so entries[i] has rank i+2.
//
// An Index is immutable after Build and safe to share between rounds.
type Index struct {
	secret    string
	entries   []Entry
	positions map[string]int
	misses    atomic.Int64
}

// Build scores every word of store against secret.
// Equal scores keep the store's enumeration order.
func Build(secret string, store *vector.Store) (*Index, error) {
	if store == nil || store.Size() == 0 {
		return nil, ErrEmptyStore
	}
	sv, ok := store.Get(secret)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSecret, secret)
	}

	entries := make([]Entry, 0, store.Size()-1)
	for w, v := range store.Words() {
		if w == secret {
			continue
		}
		score, err := vector.Distance(v, sv)
		if err != nil {
			return nil, fmt.Errorf("score %q: %w", w, err)
		}
		entries = append(entries, Entry{Word: w, Score: score})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Score, b.Score)
	})
	return newIndex(secret, entries), nil
}

// Restore recreates an index from entries produced by a previous Build.
func Restore(secret string, entries []Entry) (*Index, error) {
	if secret == "" {
		return nil, ErrUnknownSecret
	}
	for i, e := range entries {
		if e.Word == secret {
			return nil, fmt.Errorf("%w: secret %q listed at %d", ErrUnsorted, secret, i)
		}
		if i > 0 && entries[i-1].Score > e.Score {
			return nil, fmt.Errorf("%w: at %d", ErrUnsorted, i)
		}
	}
	return newIndex(secret, slices.Clone(entries)), nil
}

func newIndex(secret string, entries []Entry) *Index {
	positions := make(map[string]int, len(entries))
	for i, e := range entries {
		positions[e.Word] = i
	}
	return &Index{
		secret:    secret,
		entries:   entries,
		positions: positions,
	}
}

// Secret returns the word the index was built for.
func (x *Index) Secret() string {
	return x.secret
}

// Len returns the number of entries, i.e. the vocabulary size minus the secret.
func (x *Index) Len() int {
	return len(x.entries)
}

// EntryAt returns the entry at position i (rank i+2).
func (x *Index) EntryAt(i int) Entry {
	return x.entries[i]
}

// Entries returns a copy of the ordered entries.
func (x *Index) Entries() []Entry {
	return slices.Clone(x.entries)
}

// Top returns the k closest entries.
func (x *Index) Top(k int) []Entry {
	k = max(0, min(k, len(x.entries)))
	return slices.Clone(x.entries[:k])
}

// MaxScore returns the score of the least similar word, 0 for an empty index.
func (x *Index) MaxScore() float64 {
	if len(x.entries) == 0 {
		return 0
	}
	return x.entries[len(x.entries)-1].Score
}

// Rank returns the rank stored for word.
func (x *Index) Rank(word string) (int, bool) {
	if word == x.secret {
		return 1, true
	}
	i, ok := x.positions[word]
	if !ok {
		return 0, false
	}
	return i + 2, true
}

// RankOf returns the rank of the first entry whose score is within Epsilon of score.
// Scores recomputed outside the index may not match bit for bit, hence the tolerance.
//
// When nothing matches, the rank of the last entry is returned, capped at MaxRank.
// This should not happen for words of the same store and is logged.
func (x *Index) RankOf(word string, score float64) int {
	if word == x.secret {
		return 1
	}
	rank := 1
	for _, e := range x.entries {
		rank++
		if math.Abs(e.Score-score) < Epsilon {
			return rank
		}
	}
	x.misses.Add(1)
	log.Warn().
		Str("word", word).
		Float64("score", score).
		Str("secret", x.secret).
		Msg("score not found in rank index")
	return min(rank, MaxRank)
}

// Misses returns how many RankOf calls found no matching score.
func (x *Index) Misses() int64 {
	return x.misses.Load()
}
