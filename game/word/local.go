package word

import (
	"bufio"
	"bytes"
	"cmp"
	"encoding/json"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Vocabulary answers membership queries, typically a *vector.Store.
type Vocabulary interface {
	Has(word string) bool
}

// ParseNouns reads a noun list, either a JSON array of strings or one word per line.
// Words are normalized; entries that are not words (see IsWord) and duplicates are dropped.
func ParseNouns(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var raw []string
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err = json.Unmarshal(trimmed, &raw); err != nil {
			return nil, err
		}
	} else {
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			raw = append(raw, line)
		}
		if err = sc.Err(); err != nil {
			return nil, err
		}
	}
	return clean(raw), nil
}

func clean(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		w = Normalize(w)
		if !IsWord(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// ParseWordList reads the first field of every line, e.g. the words of a frequency list.
func ParseWordList(r io.Reader) ([]string, error) {
	var raw []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		raw = append(raw, fields[0])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return clean(raw), nil
}

// ParseSaldo reads a SALDO lexicon dump and returns its nouns in input order.
// Lines are tab separated: the fifth field is the word form and the sixth the
// part of speech, "nn" for nouns. Lines starting with '#' are comments.
func ParseSaldo(r io.Reader) ([]string, error) {
	var raw []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(strings.TrimSpace(line), "\t")
		if len(fields) < 6 || fields[5] != "nn" {
			continue
		}
		raw = append(raw, fields[4])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return clean(raw), nil
}

// Intersect returns the nouns that are also in words, sorted.
func Intersect(nouns, words []string) []string {
	known := make(map[string]struct{}, len(words))
	for _, w := range words {
		known[w] = struct{}{}
	}
	out := make([]string, 0, len(nouns))
	for _, w := range nouns {
		if _, ok := known[w]; ok {
			out = append(out, w)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ParseFrequencies reads "word count" lines. Lines without a numeric count are skipped;
// the first occurrence of a word wins.
func ParseFrequencies(r io.Reader) (map[string]int, error) {
	freq := make(map[string]int)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		w := Normalize(fields[0])
		if _, ok := freq[w]; !ok {
			freq[w] = n
		}
	}
	return freq, sc.Err()
}

// TopByFrequency returns at most n nouns that appear in freq, most frequent first.
// Nouns with equal counts keep their input order.
func TopByFrequency(nouns []string, freq map[string]int, n int) []string {
	out := make([]string, 0, len(nouns))
	for _, w := range nouns {
		if _, ok := freq[w]; ok {
			out = append(out, w)
		}
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(freq[b], freq[a])
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Eligible returns the nouns that can be a secret word: those present in vocab.
// The input order is kept so that deterministic selection is reproducible.
func Eligible(nouns []string, vocab Vocabulary) []string {
	out := make([]string, 0, len(nouns))
	for _, w := range clean(nouns) {
		if vocab.Has(w) {
			out = append(out, w)
		}
	}
	return out
}
