// generator.go: picks the secret word of a round from the eligible nouns

package word

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/lordvidex/errs"
)

var ErrNoEligible = errs.B().Code(errs.InvalidArgument).Msg("no eligible secret words").Err()

// Generator picks a secret word for a round started at t.
type Generator interface {
	Generate(t time.Time) (string, error)
}

// Seed returns the hourly seed of t, e.g. "2024-6-15-14".
// Month, day and hour are not zero padded.
func Seed(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d-%d", t.Year(), int(t.Month()), t.Day(), t.Hour())
}

// Hash is the 31-polynomial rolling hash of s with 32-bit signed wrap-around
// after every step, so that every implementation agrees on the result.
func Hash(s string) int32 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	return h
}

// PickDeterministic returns the same word for every call made within the same
// calendar hour of t's location.
func PickDeterministic(eligible []string, t time.Time) (string, error) {
	if len(eligible) == 0 {
		return "", ErrNoEligible
	}
	h := int64(Hash(Seed(t)))
	if h < 0 {
		h = -h
	}
	return eligible[h%int64(len(eligible))], nil
}

// PickRandom returns a uniformly chosen word. A nil rnd uses the global source.
func PickRandom(eligible []string, rnd *rand.Rand) (string, error) {
	if len(eligible) == 0 {
		return "", ErrNoEligible
	}
	if rnd == nil {
		return eligible[rand.IntN(len(eligible))], nil
	}
	return eligible[rnd.IntN(len(eligible))], nil
}

// hourlyGenerator changes its word at every hour boundary of loc.
type hourlyGenerator struct {
	eligible []string
	loc      *time.Location
}

func NewHourlyGen(eligible []string, loc *time.Location) Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &hourlyGenerator{eligible: eligible, loc: loc}
}

func (g *hourlyGenerator) Generate(t time.Time) (string, error) {
	return PickDeterministic(g.eligible, t.In(g.loc))
}

// randomGenerator ignores t and picks uniformly.
type randomGenerator struct {
	eligible []string
	rnd      *rand.Rand
}

func NewRandomGen(eligible []string, rnd *rand.Rand) Generator {
	return &randomGenerator{eligible: eligible, rnd: rnd}
}

func (g *randomGenerator) Generate(time.Time) (string, error) {
	return PickRandom(g.eligible, g.rnd)
}
