// Package elo holds the pure rating formulas every pipeline stage shares.
// The functions are total and side-effect free; all tunables live on
// Params so leagues can carry different defaults.
package elo

import (
	"math"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// Weak-link blend: a team's ceiling is set more by its weaker member.
const (
	weakLinkWeight = 0.7
	strongWeight   = 0.3
)

// Params carries the league-level rating tunables.
type Params struct {
	DefaultRating sharedtypes.Rating
	KFactor       int
}

// DefaultParams returns the stock tunables: 1200 base rating, K = 32.
func DefaultParams() Params {
	return Params{
		DefaultRating: 1200,
		KFactor:       32,
	}
}

// TeamRating aggregates a roster's ratings. Two-player teams use the
// weak-link formula 0.7*min + 0.3*max; any other size falls back to the
// arithmetic mean, and an empty roster to the default rating.
func (p Params) TeamRating(ratings []sharedtypes.Rating) float64 {
	if len(ratings) == 0 {
		return float64(p.DefaultRating)
	}
	if len(ratings) != 2 {
		sum := 0.0
		for _, r := range ratings {
			sum += float64(r)
		}
		return sum / float64(len(ratings))
	}
	a, b := float64(ratings[0]), float64(ratings[1])
	return weakLinkWeight*math.Min(a, b) + strongWeight*math.Max(a, b)
}

// ExpectedScore is the logistic win probability of a team rated a against
// a team rated b.
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// Delta is the rounded rating movement for a realized outcome
// (actual is 1 for a win, 0 for a loss).
func (p Params) Delta(actual, expected float64) int {
	return int(math.Round(float64(p.KFactor) * (actual - expected)))
}

// NextStreak extends a same-signed streak or resets it to +-1.
func NextStreak(current int, won bool) int {
	if won {
		if current >= 0 {
			return current + 1
		}
		return 1
	}
	if current <= 0 {
		return current - 1
	}
	return -1
}
