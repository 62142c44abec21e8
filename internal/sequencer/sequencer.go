// Package sequencer turns a deck into a randomized presentation order
// biased toward higher difficulty.
package sequencer

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"

	"github.com/croki-app/croki/internal/deck"
)

// WeightFunc maps an asset to its draw weight. Weights at or below
// zero are treated as 1 so a single bad value cannot exclude an asset.
type WeightFunc func(deck.ImageAsset) float64

// DifficultyWeight is the standard weighting: difficulty squared, so a
// difficulty-5 asset is 25x as likely per draw as a difficulty-1 asset.
// Out-of-range difficulty falls back to weight 1.
func DifficultyWeight(a deck.ImageAsset) float64 {
	d := a.Difficulty
	if d < deck.MinDifficulty || d > deck.MaxDifficulty {
		return 1
	}
	return float64(d * d)
}

// UniformWeight gives every asset the same weight, reducing Order to a
// plain shuffle.
func UniformWeight(deck.ImageAsset) float64 { return 1 }

// Order returns a permutation of assets drawn by weighted sampling
// without replacement: each position is filled by drawing one asset
// from the remaining pool with probability proportional to its weight.
// Every input asset appears exactly once; higher-weight assets tend
// toward earlier positions. The input slice is not modified.
func Order(assets []deck.ImageAsset, weight WeightFunc, rng *mathrand.Rand) []deck.ImageAsset {
	pool := make([]deck.ImageAsset, len(assets))
	copy(pool, assets)

	weights := make([]float64, len(pool))
	total := 0.0
	for i, a := range pool {
		w := weight(a)
		if w <= 0 {
			w = 1
		}
		weights[i] = w
		total += w
	}

	out := make([]deck.ImageAsset, 0, len(pool))
	for len(pool) > 0 {
		target := rng.Float64() * total
		idx := len(pool) - 1
		acc := 0.0
		for i, w := range weights {
			acc += w
			if target < acc {
				idx = i
				break
			}
		}

		out = append(out, pool[idx])
		total -= weights[idx]

		last := len(pool) - 1
		pool[idx], weights[idx] = pool[last], weights[last]
		pool, weights = pool[:last], weights[:last]
	}
	return out
}

// NewRand returns a fresh generator for production sessions. A crypto
// seed avoids identical orders from sessions started in the same tick.
func NewRand() *mathrand.Rand {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return mathrand.New(mathrand.NewSource(1))
	}
	return mathrand.New(mathrand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
}

// SeededRand returns a deterministic generator so a session's order is
// reproducible for debugging and tests.
func SeededRand(seed int64) *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(seed))
}
