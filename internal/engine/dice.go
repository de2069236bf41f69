package engine

import (
	"crypto/rand"
	"math/big"
)

// Roller produces die results in 1..sides.
type Roller interface {
	Roll(sides int) int
}

// CryptoRoller draws uniformly distributed results from crypto/rand.
type CryptoRoller struct{}

// Roll returns a value in 1..sides, or 0 for a die without sides.
func (CryptoRoller) Roll(sides int) int {
	if sides <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(sides)))
	if err != nil {
		return 1
	}
	return int(n.Int64()) + 1
}

// SequenceRoller replays fixed results, then falls back to Next.
type SequenceRoller struct {
	Results []int
	Next    Roller
}

// NewSequenceRoller returns a roller that yields results in order.
func NewSequenceRoller(results ...int) *SequenceRoller {
	return &SequenceRoller{Results: results}
}

// Roll pops the next queued result, clamped to the die.
func (s *SequenceRoller) Roll(sides int) int {
	if len(s.Results) == 0 {
		if s.Next != nil {
			return s.Next.Roll(sides)
		}
		return 1
	}
	v := s.Results[0]
	s.Results = s.Results[1:]
	switch {
	case v < 1:
		return 1
	case v > sides:
		return sides
	}
	return v
}

// RollD20 rolls one twenty-sided die.
func RollD20(r Roller) int {
	return r.Roll(20)
}
