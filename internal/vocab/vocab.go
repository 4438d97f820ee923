// Package vocab opens the vector store and the noun list a server plays with.
package vocab

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kodekulture/gissa-server/assets"
	"github.com/kodekulture/gissa-server/game/vector"
	"github.com/kodekulture/gissa-server/game/word"
)

// Open loads the embeddings and nouns files. When both paths are empty the
// bundled vocabulary is used and scale is ignored.
func Open(embeddings, nouns string, scale float64) (*vector.Store, []string, error) {
	if embeddings == "" && nouns == "" {
		log.Warn().Msg("no data files configured, using the bundled vocabulary")
		return Read(assets.Embeddings(), assets.Nouns(), assets.Scale)
	}
	ef, err := os.Open(embeddings)
	if err != nil {
		return nil, nil, err
	}
	defer ef.Close()
	nf, err := os.Open(nouns)
	if err != nil {
		return nil, nil, err
	}
	defer nf.Close()
	return Read(ef, nf, scale)
}

// Read parses a JSON embeddings object and a noun list.
func Read(embeddings, nouns io.Reader, scale float64) (*vector.Store, []string, error) {
	start := time.Now()
	entries, err := vector.ParseJSON(embeddings)
	if err != nil {
		return nil, nil, fmt.Errorf("embeddings: %w", err)
	}
	store, err := vector.Load(entries, vector.WithScale(scale))
	if err != nil {
		return nil, nil, fmt.Errorf("embeddings: %w", err)
	}
	list, err := word.ParseNouns(nouns)
	if err != nil {
		return nil, nil, fmt.Errorf("nouns: %w", err)
	}
	log.Info().
		Int("words", store.Size()).
		Int("dims", store.Dim()).
		Int("nouns", len(list)).
		Dur("took", time.Since(start)).
		Msg("vocabulary loaded")
	return store, list, nil
}
