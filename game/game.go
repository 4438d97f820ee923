package game

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/lordvidex/errs"

	"github.com/kodekulture/gissa-server/game/rank"
	"github.com/kodekulture/gissa-server/game/vector"
	"github.com/kodekulture/gissa-server/game/word"
)

// DefaultClosest is the number of closest words revealed once a round is won.
const DefaultClosest = 10

type Status string

const (
	Active Status = "active"
	Won    Status = "won"
)

// Mode decides how the secret word of a round is chosen.
type Mode string

const (
	Daily  Mode = "daily"
	Random Mode = "random"
)

// RejectReason is the machine readable cause of a rejected guess or hint.
type RejectReason string

const (
	ReasonEmpty       RejectReason = "empty"
	ReasonWon         RejectReason = "won"
	ReasonDuplicate   RejectReason = "duplicate"
	ReasonUnknownWord RejectReason = "unknown_word"
	ReasonNoGuesses   RejectReason = "no_guesses"
	ReasonNoHint      RejectReason = "no_hint"
)

var (
	ErrEmptyGuess     = errs.B().Code(errs.InvalidArgument).Msg("guess is empty").Err()
	ErrRoundWon       = errs.B().Code(errs.InvalidArgument).Msg("round is already won").Err()
	ErrDuplicateGuess = errs.B().Code(errs.InvalidArgument).Msg("word has already been guessed").Err()
	ErrUnknownWord    = errs.B().Code(errs.InvalidArgument).Msg("word is not in the vocabulary").Err()
	ErrNoGuesses      = errs.B().Code(errs.InvalidArgument).Msg("make a guess before asking for a hint").Err()
	ErrNoHint         = errs.B().Code(errs.NotFound).Msg("no hint available").Err()
)

// Reason returns the reject reason of err, or "" when err is not a rejection.
func Reason(err error) RejectReason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyGuess):
		return ReasonEmpty
	case errors.Is(err, ErrRoundWon):
		return ReasonWon
	case errors.Is(err, ErrDuplicateGuess):
		return ReasonDuplicate
	case errors.Is(err, ErrUnknownWord):
		return ReasonUnknownWord
	case errors.Is(err, ErrNoGuesses):
		return ReasonNoGuesses
	case errors.Is(err, ErrNoHint):
		return ReasonNoHint
	}
	return ""
}

// Guess is a scored word of a round, either typed by the player or revealed as a hint.
type Guess struct {
	PlayedAt time.Time `json:"played_at"`
	Word     string    `json:"word"`
	Score    float64   `json:"score"`
	Rank     int       `json:"rank"`
	Hint     bool      `json:"hint"`
}

// Round is a single secret word and the guesses made against it.
//
// A Round is not safe for concurrent use, callers serialize access (see Room).
type Round struct {
	StartedAt time.Time
	WonAt     *time.Time

	store  *vector.Store
	idx    *rank.Index
	secret vector.Vector

	guesses []Guess // sorted by ascending score
	hints   []Guess // in the order they were revealed
	seen    map[string]struct{}
	last    string
	status  Status
}

// NewRound starts a round for the secret idx was built for.
func NewRound(store *vector.Store, idx *rank.Index) (*Round, error) {
	if store == nil || idx == nil {
		return nil, rank.ErrEmptyStore
	}
	sv, ok := store.Get(idx.Secret())
	if !ok {
		return nil, fmt.Errorf("%w: %q", rank.ErrUnknownSecret, idx.Secret())
	}
	return &Round{
		StartedAt: time.Now(),
		store:     store,
		idx:       idx,
		secret:    sv,
		seen:      make(map[string]struct{}),
		status:    Active,
	}, nil
}

// Guess scores input against the secret.
//
// Rejections are returned as errors (see Reason) and leave the round unchanged.
// Guessing the secret wins the round: the returned guess has rank 1 and is not
// added to the guess list.
func (r *Round) Guess(input string) (Guess, error) {
	w := word.Normalize(input)
	if w == "" {
		return Guess{}, ErrEmptyGuess
	}
	if r.status == Won {
		return Guess{}, ErrRoundWon
	}
	if _, ok := r.seen[w]; ok {
		return Guess{}, fmt.Errorf("%w: %q", ErrDuplicateGuess, w)
	}
	v, ok := r.store.Get(w)
	if !ok {
		return Guess{}, fmt.Errorf("%w: %q", ErrUnknownWord, w)
	}

	now := time.Now()
	if w == r.idx.Secret() {
		r.status = Won
		r.WonAt = &now
		r.last = w
		return Guess{Word: w, Rank: 1, PlayedAt: now}, nil
	}

	score, err := vector.Distance(v, r.secret)
	if err != nil {
		return Guess{}, err
	}
	g := Guess{
		Word:     w,
		Score:    score,
		Rank:     r.idx.RankOf(w, score),
		PlayedAt: now,
	}
	r.add(g)
	return g, nil
}

func (r *Round) add(g Guess) {
	r.seen[g.Word] = struct{}{}
	r.guesses = append(r.guesses, g)
	slices.SortStableFunc(r.guesses, func(a, b Guess) int {
		return cmp.Compare(a.Score, b.Score)
	})
	r.last = g.Word
}

func (r *Round) Status() Status {
	return r.status
}

func (r *Round) Won() bool {
	return r.status == Won
}

// Guesses returns the guesses made so far, closest first.
func (r *Round) Guesses() []Guess {
	return slices.Clone(r.guesses)
}

// Best returns the closest guess so far.
func (r *Round) Best() (Guess, bool) {
	if len(r.guesses) == 0 {
		return Guess{}, false
	}
	return r.guesses[0], true
}

// Hints returns the revealed hints in the order they were given.
func (r *Round) Hints() []Guess {
	return slices.Clone(r.hints)
}

// Last returns the word of the most recent accepted guess or hint.
func (r *Round) Last() string {
	return r.last
}

// Secret returns the secret word, but only once the round is won.
func (r *Round) Secret() (string, bool) {
	if r.status != Won {
		return "", false
	}
	return r.idx.Secret(), true
}

// RevealSecret returns the secret regardless of the status. Used for debugging.
func (r *Round) RevealSecret() string {
	return r.idx.Secret()
}

// Closest returns the k words closest to the secret. A non positive k uses DefaultClosest.
func (r *Round) Closest(k int) []rank.Entry {
	if k <= 0 {
		k = DefaultClosest
	}
	return r.idx.Top(k)
}

// MaxScore returns the score of the least similar vocabulary word.
func (r *Round) MaxScore() float64 {
	return r.idx.MaxScore()
}

// Len returns the vocabulary size.
func (r *Round) Len() int {
	return r.store.Size()
}
