// Package exam holds the pure delivery and grading core: reversible
// shuffling, the availability window, scoring, and review reconstruction.
// Nothing in this package touches storage, randomness is confined to the
// two Shuffle* entry points, and every other function is deterministic.
package exam

import (
	"math/rand"

	"github.com/eduvio/examdesk/internal/model"
)

// Permutation maps a display position to the original position it shows:
// p[displayIndex] = originalIndex. The zero-length permutation is valid and
// represents "nothing to reorder".
type Permutation []int

// NewRandomPermutation returns a fresh uniformly random permutation of size n.
func NewRandomPermutation(n int) Permutation {
	return Permutation(rand.Perm(n))
}

// Identity returns the permutation that leaves order unchanged.
func Identity(n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Valid reports whether p is a bijection over [0, len(p)).
func (p Permutation) Valid() bool {
	seen := make([]bool, len(p))
	for _, orig := range p {
		if orig < 0 || orig >= len(p) || seen[orig] {
			return false
		}
		seen[orig] = true
	}
	return true
}

// Inverse returns the permutation q with q[originalIndex] = displayIndex.
// p must be valid.
func (p Permutation) Inverse() Permutation {
	inv := make(Permutation, len(p))
	for display, orig := range p {
		inv[orig] = display
	}
	return inv
}

// ToMap converts p to the wire/persistence form used on attempts:
// displayIndex → originalIndex.
func (p Permutation) ToMap() model.OptionMap {
	m := make(model.OptionMap, len(p))
	for display, orig := range p {
		m[display] = orig
	}
	return m
}

// PermutationFromMap rebuilds a permutation of size n from its persisted map
// form. Returns false if the map is not a bijection over [0, n).
func PermutationFromMap(m model.OptionMap, n int) (Permutation, bool) {
	if len(m) != n {
		return nil, false
	}
	p := make(Permutation, n)
	for display, orig := range m {
		if display < 0 || display >= n {
			return nil, false
		}
		p[display] = orig
	}
	if !p.Valid() {
		return nil, false
	}
	return p, true
}

// Apply reorders src by p: out[i] = src[p[i]]. src is not modified.
// p must be valid and the same length as src.
func Apply[T any](p Permutation, src []T) []T {
	out := make([]T, len(src))
	for display, orig := range p {
		out[display] = src[orig]
	}
	return out
}
