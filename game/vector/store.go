// Package vector holds the word embeddings of the vocabulary and the
// similarity function used to compare them.
package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/kodekulture/gissa-server/game/word"
)

// Vector is the embedding of a single word.
type Vector []float32

// RawEntry is a word and its unscaled values as read from a source file.
type RawEntry struct {
	Word   string
	Values []float64
}

var (
	ErrEmpty             = errors.New("no vectors to load")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidWord       = errors.New("word is not alphabetic")
	ErrDuplicateWord     = errors.New("duplicate word")
	ErrInvalidValue      = errors.New("value is not a finite number")
	ErrInvalidScale      = errors.New("scale must be positive")
)

// LoadError describes why a vector source could not be loaded.
// Line is the 1-based position of the offending entry, 0 when unknown.
type LoadError struct {
	Line int
	Word string
	Err  error
}

func (e *LoadError) Error() string {
	switch {
	case e.Word != "" && e.Line > 0:
		return fmt.Sprintf("vector: entry %d (%q): %v", e.Line, e.Word, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("vector: entry %d: %v", e.Line, e.Err)
	default:
		return fmt.Sprintf("vector: %v", e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type options struct {
	scale float64
}

// Option configures Load.
type Option func(*options)

// WithScale divides every raw value by scale, converting fixed-point
// integers (e.g. scaled by 100) back to their real magnitude.
func WithScale(scale float64) Option {
	return func(o *options) {
		o.scale = scale
	}
}

// Store is a read-only mapping from word to Vector.
// Words keep the order in which they were loaded.
type Store struct {
	words       []string
	vectors     map[string]Vector
	dim         int
	fingerprint uint64
}

// Load builds a Store from entries. Any malformed entry fails the whole load.
func Load(entries []RawEntry, opts ...Option) (*Store, error) {
	o := options{scale: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.scale <= 0 || math.IsNaN(o.scale) || math.IsInf(o.scale, 0) {
		return nil, &LoadError{Err: ErrInvalidScale}
	}
	if len(entries) == 0 {
		return nil, &LoadError{Err: ErrEmpty}
	}

	s := &Store{
		words:   make([]string, 0, len(entries)),
		vectors: make(map[string]Vector, len(entries)),
		dim:     len(entries[0].Values),
	}
	h := xxhash.New()
	var buf [4]byte
	for i, e := range entries {
		w := word.Normalize(e.Word)
		fail := func(err error) (*Store, error) {
			return nil, &LoadError{Line: i + 1, Word: e.Word, Err: err}
		}
		if !word.IsWord(w) {
			return fail(ErrInvalidWord)
		}
		if _, ok := s.vectors[w]; ok {
			return fail(ErrDuplicateWord)
		}
		if len(e.Values) == 0 || len(e.Values) != s.dim {
			return fail(fmt.Errorf("%w: got %d values, want %d", ErrDimensionMismatch, len(e.Values), s.dim))
		}
		v := make(Vector, len(e.Values))
		for j, raw := range e.Values {
			if math.IsNaN(raw) || math.IsInf(raw, 0) {
				return fail(ErrInvalidValue)
			}
			v[j] = float32(raw / o.scale)
		}

		s.words = append(s.words, w)
		s.vectors[w] = v

		_, _ = h.WriteString(w)
		for _, f := range v {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
			_, _ = h.Write(buf[:])
		}
	}
	binary.LittleEndian.PutUint32(buf[:], uint32(s.dim))
	_, _ = h.Write(buf[:])
	s.fingerprint = h.Sum64()
	return s, nil
}

// Has reports whether w is in the store.
func (s *Store) Has(w string) bool {
	_, ok := s.vectors[w]
	return ok
}

// Get returns the vector of w.
func (s *Store) Get(w string) (Vector, bool) {
	v, ok := s.vectors[w]
	return v, ok
}

// Size returns the number of words in the store.
func (s *Store) Size() int {
	return len(s.words)
}

// Dim returns the dimension shared by every vector.
func (s *Store) Dim() int {
	return s.dim
}

// Words iterates the store in load order.
func (s *Store) Words() iter.Seq2[string, Vector] {
	return func(yield func(string, Vector) bool) {
		for _, w := range s.words {
			if !yield(w, s.vectors[w]) {
				return
			}
		}
	}
}

// Fingerprint identifies the content of the store. Two stores loaded from the
// same data share a fingerprint.
func (s *Store) Fingerprint() uint64 {
	return s.fingerprint
}
