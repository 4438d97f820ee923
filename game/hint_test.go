package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodekulture/gissa-server/game/rank"
)

// linearIndex has entries w0..w(n-1), so wI has rank I+2.
func linearIndex(t *testing.T, n int) *rank.Index {
	t.Helper()
	entries := make([]rank.Entry, n)
	for i := range entries {
		entries[i] = rank.Entry{Word: fmt.Sprint("w", i), Score: float64(i) / float64(n)}
	}
	idx, err := rank.Restore("secret", entries)
	require.NoError(t, err)
	return idx
}

func TestSelectHint(t *testing.T) {
	idx := linearIndex(t, 200)
	usedSet := func(words ...string) func(string) bool {
		m := map[string]bool{}
		for _, w := range words {
			m[w] = true
		}
		return func(w string) bool { return m[w] }
	}

	testcases := []struct {
		name     string
		bestRank int
		used     func(string) bool
		wantWord string
		wantRank int
		found    bool
	}{
		{"odd best rank rounds up", 101, usedSet(), "w49", 51, true},
		{"even best rank", 100, usedSet(), "w48", 50, true},
		{"closer side first", 101, usedSet("w49"), "w48", 50, true},
		{"then farther side", 101, usedSet("w49", "w48"), "w50", 52, true},
		{"rank 2 has nothing closer", 2, usedSet("w0"), "w1", 3, true},
		{"rank 3 halves to rank 2", 3, usedSet("w1"), "w0", 2, true},
		{"target past the end", 10000, usedSet(), "", 0, false},
		{"offset bound reaches w49 from rank 2", 2, usedSet(wordsUpTo(48)...), "w49", 51, true},
		{"offset bound is inclusive and stops", 2, usedSet(wordsUpTo(49)...), "", 0, false},
	}
	for _, tt := range testcases {
		t.Run(tt.name, func(t *testing.T) {
			e, rnk, ok := SelectHint(idx, tt.bestRank, tt.used)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.wantWord, e.Word)
			assert.Equal(t, tt.wantRank, rnk)
		})
	}
}

func wordsUpTo(n int) []string {
	out := make([]string, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, fmt.Sprint("w", i))
	}
	return out
}

func TestRound_Hint(t *testing.T) {
	r := newRound(t, sampleStore(t), "katt")

	_, err := r.Hint(time.Now())
	assert.ErrorIs(t, err, ErrNoGuesses)

	_, err = r.Guess("bil")
	require.NoError(t, err)

	g, err := r.Hint(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "hund", g.Word)
	assert.Equal(t, 2, g.Rank)
	assert.True(t, g.Hint)

	guesses := r.Guesses()
	require.Len(t, guesses, 2)
	assert.Equal(t, "hund", guesses[0].Word, "hints are sorted in with the guesses")
	assert.Len(t, r.Hints(), 1)

	_, err = r.Guess("hund")
	assert.ErrorIs(t, err, ErrDuplicateGuess, "a hinted word can not be guessed")

	_, err = r.Hint(time.Now())
	assert.ErrorIs(t, err, ErrNoHint)
	assert.Equal(t, ReasonNoHint, Reason(err))

	_, err = r.Guess("katt")
	require.NoError(t, err)
	_, err = r.Hint(time.Now())
	assert.ErrorIs(t, err, ErrRoundWon)
}

func TestRound_HintNeverRepeats(t *testing.T) {
	store := bigStore(t, 500)
	r := newRound(t, store, "a")
	idx, err := rank.Build("a", store)
	require.NoError(t, err)

	_, err = r.Guess(idx.EntryAt(300).Word)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, g := range r.Guesses() {
		seen[g.Word] = true
	}
	var hints int
	for {
		best, _ := r.Best()
		g, err := r.Hint(time.Now())
		if err != nil {
			require.ErrorIs(t, err, ErrNoHint)
			break
		}
		assert.False(t, seen[g.Word], "hint %q was already used", g.Word)
		assert.LessOrEqual(t, g.Rank, best.Rank+MaxHintOffset, "hint %q is near the target", g.Word)
		seen[g.Word] = true
		hints++
		require.Less(t, hints, 1000)
	}
	t.Logf("%d hints before exhaustion", hints)
	best, _ := r.Best()
	assert.Equal(t, 2, best.Rank, "hints walk down to the closest word")
	assert.Len(t, r.Hints(), hints)
}
