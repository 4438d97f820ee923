package vocab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodekulture/gissa-server/game/vector"
)

func TestOpen_Bundled(t *testing.T) {
	store, nouns, err := Open("", "", 0)
	require.NoError(t, err)
	assert.Greater(t, store.Size(), 0)
	assert.NotEmpty(t, nouns)
}

func TestOpen_Files(t *testing.T) {
	dir := t.TempDir()
	emb := filepath.Join(dir, "embeddings.json")
	nouns := filepath.Join(dir, "nouns.txt")
	require.NoError(t, os.WriteFile(emb, []byte(`{"katt":[100,0],"hund":[90,10]}`), 0o600))
	require.NoError(t, os.WriteFile(nouns, []byte("katt\nhund\n"), 0o600))

	store, list, err := Open(emb, nouns, 100)
	require.NoError(t, err)
	v, ok := store.Get("hund")
	require.True(t, ok)
	assert.InDelta(t, 0.9, v[0], 1e-6)
	assert.Equal(t, []string{"katt", "hund"}, list)

	_, _, err = Open(filepath.Join(dir, "missing.json"), nouns, 100)
	assert.Error(t, err)
}

func TestRead_Errors(t *testing.T) {
	_, _, err := Read(strings.NewReader(`{"katt":[1,2],"hund":[1]}`), strings.NewReader("katt"), 1)
	assert.ErrorIs(t, err, vector.ErrDimensionMismatch)

	_, _, err = Read(strings.NewReader(`{"katt":[1,2]}`), strings.NewReader(`["katt"`), 1)
	assert.Error(t, err)
}
