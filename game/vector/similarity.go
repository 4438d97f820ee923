package vector

import (
	"errors"
	"math"
)

var ErrMissingVector = errors.New("missing vector")

// Distance returns the dissimilarity of a and b in [0, 1]:
// 0 for vectors pointing the same way, 0.5 for orthogonal ones and 1 for opposite ones.
//
// A zero-magnitude vector has no direction and is maximally dissimilar to everything.
func Distance(a, b Vector) (float64, error) {
	if a == nil || b == nil {
		return 0, ErrMissingVector
	}
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 1, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Min(1, math.Max(0, (1-cos)/2)), nil
}
