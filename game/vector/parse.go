package vector

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ParseJSON reads a JSON object mapping words to arrays of numbers.
// Entries are returned in document order, which is the order the store enumerates them in.
func ParseJSON(r io.Reader) ([]RawEntry, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, &LoadError{Err: err}
	}
	var entries []RawEntry
	for dec.More() {
		line := len(entries) + 1
		tok, err := dec.Token()
		if err != nil {
			return nil, &LoadError{Line: line, Err: err}
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &LoadError{Line: line, Err: fmt.Errorf("unexpected token %v", tok)}
		}
		var values []any
		if err = dec.Decode(&values); err != nil {
			return nil, &LoadError{Line: line, Word: key, Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
		}
		e := RawEntry{Word: key, Values: make([]float64, len(values))}
		for i, v := range values {
			n, ok := v.(json.Number)
			if !ok {
				return nil, &LoadError{Line: line, Word: key, Err: fmt.Errorf("%w: %v", ErrInvalidValue, v)}
			}
			if e.Values[i], err = n.Float64(); err != nil {
				return nil, &LoadError{Line: line, Word: key, Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
			}
		}
		entries = append(entries, e)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, &LoadError{Err: err}
	}
	return entries, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// ReadVec reads embeddings in the fastText text format ("word v1 v2 ... vN" per line,
// optionally preceded by a "count dims" header).
//
// Only the first dims values of a line are kept. Lines with fewer values or with
// unparsable numbers are skipped, and so are words rejected by keep (nil keeps everything).
// The number of skipped malformed lines is returned alongside the entries.
func ReadVec(r io.Reader, dims int, keep func(string) bool) ([]RawEntry, int, error) {
	if dims <= 0 {
		return nil, 0, errors.New("vector: dims must be positive")
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var (
		entries []RawEntry
		skipped int
		first   = true
	)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if first {
			first = false
			if isHeader(fields) {
				continue
			}
		}
		if len(fields) == 0 {
			continue
		}
		if len(fields) < dims+1 {
			skipped++
			continue
		}
		w := strings.ToLower(fields[0])
		if keep != nil && !keep(w) {
			continue
		}
		values, err := parseFloats(fields[1 : dims+1])
		if err != nil {
			skipped++
			continue
		}
		entries = append(entries, RawEntry{Word: w, Values: values})
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, err
	}
	return entries, skipped, nil
}

func isHeader(fields []string) bool {
	if len(fields) != 2 {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			return false
		}
	}
	return true
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// EncodeJSON writes entries as a JSON object in their given order.
// When scale is not 1, values are multiplied by scale and rounded to integers.
func EncodeJSON(w io.Writer, entries []RawEntry, scale float64) error {
	bw := bufio.NewWriter(w)
	bw.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			bw.WriteByte(',')
		}
		key, err := json.Marshal(e.Word)
		if err != nil {
			return err
		}
		bw.Write(key)
		bw.WriteString(":[")
		for j, v := range e.Values {
			if j > 0 {
				bw.WriteByte(',')
			}
			if scale != 1 {
				bw.WriteString(strconv.FormatInt(int64(math.Round(v*scale)), 10))
			} else {
				bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		bw.WriteByte(']')
	}
	bw.WriteByte('}')
	return bw.Flush()
}
