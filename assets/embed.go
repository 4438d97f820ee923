// Package assets bundles a small Swedish vocabulary used when no data files are configured.
package assets

import (
	"bytes"
	_ "embed"
	"io"
)

// Scale is the fixed-point factor of the bundled embeddings.
const Scale = 100

var (
	//go:embed embeddings.json
	embeddings []byte

	//go:embed nouns.txt
	nouns []byte
)

// Embeddings returns the bundled embeddings, a JSON object of scaled integer vectors.
func Embeddings() io.Reader {
	return bytes.NewReader(embeddings)
}

// Nouns returns the bundled noun list, one word per line.
func Nouns() io.Reader {
	return bytes.NewReader(nouns)
}
