package rank

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodekulture/gissa-server/game/vector"
)

func smallStore(t *testing.T) *vector.Store {
	t.Helper()
	s, err := vector.Load([]vector.RawEntry{
		{Word: "katt", Values: []float64{1, 0}},
		{Word: "hund", Values: []float64{0.9, 0.1}},
		{Word: "bil", Values: []float64{0, 1}},
	})
	require.NoError(t, err)
	return s
}

func randomStore(t *testing.T, n int) *vector.Store {
	t.Helper()
	rnd := rand.New(rand.NewPCG(7, 11))
	letters := []rune("abcdefghijklmnopqrstuvwxyz")
	entries := make([]vector.RawEntry, 0, n)
	for i := 0; i < n; i++ {
		// base-26 names keep words unique
		name := []rune{}
		for x := i; ; x /= 26 {
			name = append(name, letters[x%26])
			if x < 26 {
				break
			}
		}
		entries = append(entries, vector.RawEntry{
			Word:   "w" + string(name),
			Values: []float64{rnd.Float64() - 0.5, rnd.Float64() - 0.5, rnd.Float64() - 0.5},
		})
	}
	s, err := vector.Load(entries)
	require.NoError(t, err)
	return s
}

func TestBuild(t *testing.T) {
	idx, err := Build("katt", smallStore(t))
	require.NoError(t, err)

	require.Equal(t, 2, idx.Len())
	assert.Equal(t, "katt", idx.Secret())
	assert.Equal(t, "hund", idx.EntryAt(0).Word)
	assert.InDelta(t, 0.00306, idx.EntryAt(0).Score, 1e-4)
	assert.Equal(t, "bil", idx.EntryAt(1).Word)
	assert.InDelta(t, 0.5, idx.EntryAt(1).Score, 1e-9)
	assert.InDelta(t, 0.5, idx.MaxScore(), 1e-9)
}

func TestBuild_Preconditions(t *testing.T) {
	_, err := Build("katt", nil)
	assert.ErrorIs(t, err, ErrEmptyStore)

	_, err = Build("häst", smallStore(t))
	assert.ErrorIs(t, err, ErrUnknownSecret)
}

func TestBuild_Ordering(t *testing.T) {
	store := randomStore(t, 400)
	idx, err := Build("wa", store)
	require.NoError(t, err)
	require.Equal(t, store.Size()-1, idx.Len())

	for i := 0; i+1 < idx.Len(); i++ {
		assert.LessOrEqual(t, idx.EntryAt(i).Score, idx.EntryAt(i+1).Score, "entries %d and %d", i, i+1)
	}

	again, err := Build("wa", store)
	require.NoError(t, err)
	assert.Equal(t, idx.Entries(), again.Entries(), "rebuilding is deterministic")
}

func TestBuild_TiesKeepStoreOrder(t *testing.T) {
	s, err := vector.Load([]vector.RawEntry{
		{Word: "sol", Values: []float64{1, 0}},
		{Word: "moln", Values: []float64{0, 1}},
		{Word: "regn", Values: []float64{0, 2}},
		{Word: "snö", Values: []float64{0, 3}},
	})
	require.NoError(t, err)

	idx, err := Build("sol", s)
	require.NoError(t, err)
	words := make([]string, idx.Len())
	for i := range words {
		words[i] = idx.EntryAt(i).Word
	}
	assert.Equal(t, []string{"moln", "regn", "snö"}, words)
}

func TestIndex_RankOf(t *testing.T) {
	store := smallStore(t)
	idx, err := Build("katt", store)
	require.NoError(t, err)

	score := func(w string) float64 {
		a, _ := store.Get(w)
		b, _ := store.Get("katt")
		d, err := vector.Distance(a, b)
		require.NoError(t, err)
		return d
	}

	testcases := []struct {
		word  string
		score float64
		want  int
	}{
		{"katt", 0.42, 1},
		{"hund", score("hund"), 2},
		{"bil", score("bil"), 3},
		{"bil", score("bil") + Epsilon/2, 3},
	}
	for _, tt := range testcases {
		t.Run(fmt.Sprintf("%s %.4f", tt.word, tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, idx.RankOf(tt.word, tt.score))
		})
	}
	assert.Zero(t, idx.Misses())

	t.Log("a score that is not in the index returns the last rank")
	assert.Equal(t, 3, idx.RankOf("okänd", 0.25))
	assert.EqualValues(t, 1, idx.Misses())
}

func TestIndex_RankOfCapped(t *testing.T) {
	entries := make([]Entry, MaxRank+10)
	for i := range entries {
		entries[i] = Entry{Word: fmt.Sprint("w", i), Score: 0.1}
	}
	idx, err := Restore("secret", entries)
	require.NoError(t, err)
	assert.Equal(t, MaxRank, idx.RankOf("w", 0.9))
}

func TestIndex_Rank(t *testing.T) {
	idx, err := Build("wa", randomStore(t, 100))
	require.NoError(t, err)

	for i := 0; i < idx.Len(); i++ {
		e := idx.EntryAt(i)
		got, ok := idx.Rank(e.Word)
		require.True(t, ok)
		assert.Equal(t, i+2, got)
		assert.LessOrEqual(t, idx.RankOf(e.Word, e.Score), got, "ties resolve to the first matching score")
	}
	r, ok := idx.Rank("wa")
	assert.True(t, ok)
	assert.Equal(t, 1, r)

	_, ok = idx.Rank("saknas")
	assert.False(t, ok)
}

func TestIndex_Top(t *testing.T) {
	idx, err := Build("katt", smallStore(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"hund"}, words(idx.Top(1)))
	assert.Equal(t, []string{"hund", "bil"}, words(idx.Top(10)))
	assert.Empty(t, idx.Top(0))
	assert.Empty(t, idx.Top(-1))
}

func TestRestore(t *testing.T) {
	idx, err := Build("wa", randomStore(t, 50))
	require.NoError(t, err)

	restored, err := Restore(idx.Secret(), idx.Entries())
	require.NoError(t, err)
	assert.Equal(t, idx.Entries(), restored.Entries())

	_, err = Restore("wa", []Entry{{"b", 0.3}, {"c", 0.1}})
	assert.ErrorIs(t, err, ErrUnsorted)

	_, err = Restore("wa", []Entry{{"wa", 0}})
	assert.ErrorIs(t, err, ErrUnsorted)
}

func words(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Word
	}
	return out
}
