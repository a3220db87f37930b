package game

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	// CardSize is the number of cells on a cartela.
	CardSize = 25

	// FreeIndex is the center cell, always pre-marked.
	FreeIndex = 12

	// FreeValue is the wildcard value stored in the center cell. It never
	// matches a drawn number.
	FreeValue = 0

	// MaxNumber is the highest drawable number.
	MaxNumber = 75

	// cardSeedMultiplier spreads slot numbers into distinct seeds when
	// deterministic cards are enabled.
	cardSeedMultiplier = 12345
)

// columnRanges holds the inclusive value range of each card column:
// B 1-15, I 16-30, N 31-45, G 46-60, O 61-75.
var columnRanges = [5][2]int{{1, 15}, {16, 30}, {31, 45}, {46, 60}, {61, 75}}

var columnLetters = [5]string{"B", "I", "N", "G", "O"}

// Card is a 5x5 cartela in row-major order: index = row*5 + col.
type Card [CardSize]int

// GenerateCard builds a cartela from rng: each column is a sorted sample
// without replacement from its range, the center cell is the wildcard.
func GenerateCard(rng *rand.Rand) Card {
	var card Card
	for col := 0; col < 5; col++ {
		lo, hi := columnRanges[col][0], columnRanges[col][1]
		need := 5
		if col == 2 {
			need = 4 // center is FREE
		}
		sample := rng.Perm(hi-lo+1)[:need]
		for i := range sample {
			sample[i] += lo
		}
		sort.Ints(sample)

		i := 0
		for row := 0; row < 5; row++ {
			idx := row*5 + col
			if idx == FreeIndex {
				card[idx] = FreeValue
				continue
			}
			card[idx] = sample[i]
			i++
		}
	}
	return card
}

// cardRNG picks the random source for one card. Deterministic mode derives
// a local source from the slot so the same cartela number always yields the
// same card without perturbing the session's draw randomness.
func cardRNG(sessionRNG *rand.Rand, seeded bool, slot int) *rand.Rand {
	if seeded {
		return rand.New(rand.NewSource(int64(slot) * cardSeedMultiplier))
	}
	return sessionRNG
}

// IndexOf returns the cell index of value on the card, or -1. The wildcard
// cell is never matched by value.
func (c Card) IndexOf(value int) int {
	for i, v := range c {
		if i == FreeIndex {
			continue
		}
		if v == value {
			return i
		}
	}
	return -1
}

// Letter returns the BINGO column letter for a drawn number.
func Letter(n int) string {
	for col, r := range columnRanges {
		if n >= r[0] && n <= r[1] {
			return columnLetters[col]
		}
	}
	return ""
}

// FormatNumber renders a drawn number as e.g. "B-7" or "O-75".
func FormatNumber(n int) string {
	return fmt.Sprintf("%s-%d", Letter(n), n)
}
