// Package sampler extracts bounded, randomized excerpts from long article
// text so that prompts stay small while still drawing on several parts of
// the article instead of only its lead section.
package sampler

import (
	"math/rand/v2"
	"time"
	"unicode"
)

const (
	// MinLength and MaxLength bound the requested excerpt length.
	MinLength = 500
	MaxLength = 50_000

	// TierThreshold separates the many-small-sections tier from the
	// few-large-sections tier. A request of exactly TierThreshold uses the
	// large tier.
	TierThreshold = 3000

	SmallTierSections = 8
	LargeTierSections = 4

	// wordSnapWindow is how far a chunk start may move forward to land on
	// the beginning of a word.
	wordSnapWindow = 24
)

// Sampler draws random excerpts. A Sampler is not safe for concurrent use;
// create one per request.
type Sampler struct {
	rng *rand.Rand
}

// New returns a Sampler driven by rng.
func New(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// NewSeeded returns a Sampler with a deterministic PCG source.
func NewSeeded(seed uint64) *Sampler {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewDefault returns a Sampler seeded from the clock.
func NewDefault() *Sampler {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

// ClampLength maps a caller-requested length into [MinLength, MaxLength].
func ClampLength(requested int) int {
	switch {
	case requested < MinLength:
		return MinLength
	case requested > MaxLength:
		return MaxLength
	default:
		return requested
	}
}

// Sample returns text unchanged when it already fits the clamped budget,
// and otherwise an excerpt of exactly ClampLength(requestedLength) code
// points assembled from randomly placed chunks.
func (s *Sampler) Sample(text string, requestedLength int) string {
	if text == "" {
		return ""
	}

	target := ClampLength(requestedLength)
	runes := []rune(text)
	if len(runes) <= target {
		return text
	}

	sections := LargeTierSections
	if target < TierThreshold {
		sections = SmallTierSections
	}
	base := max(target/sections, 1)

	out := make([]rune, 0, target)
	for len(out) < target {
		remaining := target - len(out)
		size := min(s.chunkSize(base), remaining)
		start := s.rng.IntN(len(runes) - size + 1)
		start = snapToWord(runes, start, size)
		out = append(out, runes[start:start+size]...)
	}

	return string(out[:target])
}

// chunkSize varies base by up to ±25%.
func (s *Sampler) chunkSize(base int) int {
	spread := base / 4
	if spread == 0 {
		return base
	}
	return base - spread + s.rng.IntN(2*spread+1)
}

// snapToWord moves start forward to the first rune after whitespace, as
// long as the chunk still fits and the move stays within wordSnapWindow.
func snapToWord(runes []rune, start, size int) int {
	if start == 0 || unicode.IsSpace(runes[start-1]) {
		return start
	}
	limit := min(start+wordSnapWindow, len(runes)-size)
	for i := start; i < limit; i++ {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return start
}
