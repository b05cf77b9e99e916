package orp

import "math/rand"

// PermutationOracle produces a uniformly random bijection π over [0,n) and
// its inverse, the way the reference's permutation oracle does: a
// Fisher-Yates shuffle of the identity array, materializing π⁻¹ by one scan.
// Grounded on spec.md §4.2; there is no teacher equivalent since none of the
// example repos model a permutation generator, so this is built directly
// from the spec's Fisher-Yates description using math/rand, the standard
// source every other example reaches for when it needs non-cryptographic
// randomness (e.g. fasaxc-permutation's own shuffle helper).
type PermutationOracle struct {
	n     uint32
	pi    []uint32
	invPi []uint32
	rng   *rand.Rand
}

// NewPermutationOracle returns an oracle over [0,n) seeded from seed. Two
// oracles constructed with the same seed produce the same π.
func NewPermutationOracle(n uint32, seed int64) *PermutationOracle {
	o := &PermutationOracle{
		n:   n,
		rng: rand.New(rand.NewSource(seed)),
	}
	o.reshuffle()
	return o
}

func (o *PermutationOracle) reshuffle() {
	o.pi = make([]uint32, o.n)
	for i := range o.pi {
		o.pi[i] = uint32(i)
	}
	o.rng.Shuffle(len(o.pi), func(i, j int) {
		o.pi[i], o.pi[j] = o.pi[j], o.pi[i]
	})
	o.invPi = make([]uint32, o.n)
	for k, v := range o.pi {
		o.invPi[v] = uint32(k)
	}
}

// Reseed generates a fresh π in place, replacing both π and π⁻¹.
func (o *PermutationOracle) Reseed() {
	o.reshuffle()
}

// Pi returns π(key).
func (o *PermutationOracle) Pi(key uint32) uint32 {
	return o.pi[key]
}

// InvPi returns π⁻¹(index).
func (o *PermutationOracle) InvPi(index uint32) uint32 {
	return o.invPi[index]
}

// N returns the size of the domain this oracle permutes.
func (o *PermutationOracle) N() uint32 {
	return o.n
}
