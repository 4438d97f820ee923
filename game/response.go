package game

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lordvidex/x/ptr"
)

type Response struct {
	StartedAt  time.Time         `json:"started_at"`
	WonAt      *time.Time        `json:"won_at"`
	BestRank   *int              `json:"best_rank,omitempty"`
	Secret     *string           `json:"secret,omitempty"` // returned only if the round is won
	Mode       Mode              `json:"mode"`
	Status     Status            `json:"status"`
	Last       string            `json:"last,omitempty"`
	Guesses    []GuessResponse   `json:"guesses"`
	Closest    []ClosestResponse `json:"closest,omitempty"` // returned only if the round is won
	GuessCount int               `json:"guess_count"`
	HintCount  int               `json:"hint_count"`
	Vocabulary int               `json:"vocabulary"`
	MaxScore   float64           `json:"max_score"`
	ID         uuid.UUID         `json:"id"`
}

type GuessResponse struct {
	PlayedAt time.Time `json:"played_at"`
	Word     string    `json:"word"`
	Score    float64   `json:"score"`
	Rank     int       `json:"rank"`
	// Hue is a display color from 120 (green, close) down to 0 (red, far).
	Hue  float64 `json:"hue"`
	Hint bool    `json:"hint,omitempty"`
}

type ClosestResponse struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// ErrorResponse is sent for rejected guesses and hints.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Reason RejectReason `json:"reason,omitempty"`
}

// Hue maps a score to an HSL hue, scores of 0.25 and above are all red.
func Hue(score float64) float64 {
	return math.Max(0, (1-score*4)*120)
}

// ToResponse converts a round to the response shown to the player.
// The secret and the closest words are only set once the round is won.
func ToResponse(r *Round, id uuid.UUID, mode Mode, closest int) Response {
	guesses := make([]GuessResponse, 0, len(r.guesses))
	for _, g := range r.guesses {
		guesses = append(guesses, ToGuess(g))
	}
	res := Response{
		ID:         id,
		Mode:       mode,
		Status:     r.status,
		StartedAt:  r.StartedAt,
		WonAt:      r.WonAt,
		Last:       r.Last(),
		Guesses:    guesses,
		GuessCount: len(r.guesses),
		HintCount:  len(r.hints),
		Vocabulary: r.Len(),
		MaxScore:   r.MaxScore(),
	}
	if best, ok := r.Best(); ok {
		res.BestRank = ptr.Obj(best.Rank)
	}
	if secret, ok := r.Secret(); ok {
		res.Secret = ptr.String(secret)
		for i, e := range r.Closest(closest) {
			res.Closest = append(res.Closest, ClosestResponse{Word: e.Word, Score: e.Score, Rank: i + 2})
		}
	}
	return res
}

// ToGuess converts a Guess to a GuessResponse.
func ToGuess(g Guess) GuessResponse {
	return GuessResponse{
		Word:     g.Word,
		Score:    g.Score,
		Rank:     g.Rank,
		Hue:      Hue(g.Score),
		Hint:     g.Hint,
		PlayedAt: g.PlayedAt,
	}
}
