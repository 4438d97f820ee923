package game

import (
	"time"

	"github.com/kodekulture/gissa-server/game/rank"
)

// MaxHintOffset bounds how far from the target position a hint is searched for.
const MaxHintOffset = 50

// SelectHint looks for an unused entry around the rank halfway between the
// best rank and the secret. Positions are tried nearest first, the closer
// side before the farther one.
//
// It returns the entry, its rank and whether one was found.
func SelectHint(idx *rank.Index, bestRank int, used func(string) bool) (rank.Entry, int, bool) {
	target := (bestRank + 1) / 2 // ceil(bestRank/2)
	targetIndex := target - 2

	try := func(i int) bool {
		return i >= 0 && i < idx.Len() && !used(idx.EntryAt(i).Word)
	}
	for offset := 0; offset <= MaxHintOffset; offset++ {
		if i := targetIndex - offset; try(i) {
			return idx.EntryAt(i), i + 2, true
		}
		if offset == 0 {
			continue
		}
		if i := targetIndex + offset; try(i) {
			return idx.EntryAt(i), i + 2, true
		}
	}
	return rank.Entry{}, 0, false
}

// Hint reveals a word roughly twice as close as the best guess so far.
// The hint joins the guess list and can not be guessed again.
func (r *Round) Hint(at time.Time) (Guess, error) {
	if r.status == Won {
		return Guess{}, ErrRoundWon
	}
	best, ok := r.Best()
	if !ok {
		return Guess{}, ErrNoGuesses
	}
	e, rnk, ok := SelectHint(r.idx, best.Rank, func(w string) bool {
		_, seen := r.seen[w]
		return seen
	})
	if !ok {
		return Guess{}, ErrNoHint
	}
	g := Guess{
		Word:     e.Word,
		Score:    e.Score,
		Rank:     rnk,
		Hint:     true,
		PlayedAt: at,
	}
	r.hints = append(r.hints, g)
	r.add(g)
	return g, nil
}
