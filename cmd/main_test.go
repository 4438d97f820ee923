package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodekulture/gissa-server/game"
	"github.com/kodekulture/gissa-server/game/vector"
	"github.com/kodekulture/gissa-server/service"
)

func TestSession(t *testing.T) {
	store, err := vector.Load([]vector.RawEntry{
		{Word: "katt", Values: []float64{1, 0}},
		{Word: "hund", Values: []float64{0.9, 0.1}},
		{Word: "bil", Values: []float64{0, 1}},
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv, err := service.New(ctx, store, []string{"katt"}, nil, service.Options{})
	require.NoError(t, err)
	defer srv.Stop()

	var out bytes.Buffer
	s := &session{srv: srv, mode: game.Random, out: &out}
	require.NoError(t, s.start(ctx))
	assert.Contains(t, out.String(), "3 ord")

	steps := []struct {
		line string
		want string
	}{
		{"/hint", "innan du ber om tips"},
		{"bil", "bil"},
		{"bil", "redan gissat"},
		{"zebra", "finns inte"},
		{"/hint", "hund"},
		{"/hint", "Inga fler tips"},
		{"/guesses", "2. bil"},
		{"KATT", `Ordet var "katt"`},
		{"hund", "redan vunnen"},
	}
	for _, tt := range steps {
		out.Reset()
		assert.True(t, s.handle(ctx, tt.line), tt.line)
		assert.Contains(t, out.String(), tt.want, tt.line)
	}

	out.Reset()
	assert.True(t, s.handle(ctx, "/new"))
	assert.Contains(t, out.String(), "Ny omgång")
	assert.False(t, s.handle(ctx, "/quit"))
}

func TestNounsTop(t *testing.T) {
	dir := t.TempDir()
	nouns := filepath.Join(dir, "nouns.json")
	freq := filepath.Join(dir, "freq.txt")
	require.NoError(t, os.WriteFile(nouns, []byte(`["katt","hund","bil","hus"]`), 0o600))
	require.NoError(t, os.WriteFile(freq, []byte("hund 50\nbil 70\nkatt 10\nspringa 999\n"), 0o600))

	cmd := nounsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"top", "--nouns", nouns, "--freq", freq, "-n", "2"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "bil\nhund\n", out.String())
}

func TestNounsExtract(t *testing.T) {
	dir := t.TempDir()
	saldo := filepath.Join(dir, "saldo.txt")
	words := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(saldo, []byte(strings.Join([]string{
		"# header",
		"katt..1\tdjur..1\t-\tkatt..nn.1\tkatt\tnn",
		"springa..1\tröra..1\t-\tspringa..vb.1\tspringa\tvb",
		"idé..1\ttanke..1\t-\tidé..nn.1\tidé\tnn",
		"älg..1\tdjur..1\t-\tälg..nn.1\tälg\tnn",
	}, "\n")), 0o600))
	require.NoError(t, os.WriteFile(words, []byte("springa 90\nidé 40\nkatt 30\nhund 20\n"), 0o600))

	cmd := nounsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"extract", "--saldo", saldo, "--words", words})
	require.NoError(t, cmd.Execute())
	assert.JSONEq(t, `["idé","katt"]`, out.String())
}

func TestEmbeddingsFilter(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cc.sv.vec")
	words := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(in, []byte(strings.Join([]string{
		"5 3",
		"katt 0.1 0.2 0.3",
		"Hund 0.4 0.5 0.6",
		"bil 0.7 0.8",
		"123 1 1 1",
		"hus 0.01 0.02 0.03",
	}, "\n")), 0o600))
	require.NoError(t, os.WriteFile(words, []byte("katt\nhund\nbil\n"), 0o600))

	t.Run("all alphabetic words", func(t *testing.T) {
		cmd := embeddingsCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"filter", "--in", in, "--dims", "2"})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, `{"katt":[10,20],"hund":[40,50],"bil":[70,80],"hus":[1,2]}`, out.String())
	})

	t.Run("word list", func(t *testing.T) {
		cmd := embeddingsCmd()
		outFile := filepath.Join(dir, "out.json")
		cmd.SetArgs([]string{"filter", "--in", in, "--dims", "3", "--words", words, "--out", outFile})
		require.NoError(t, cmd.Execute())
		b, err := os.ReadFile(outFile)
		require.NoError(t, err)
		assert.Equal(t, `{"katt":[10,20,30],"hund":[40,50,60]}`, string(b))
	})
}
