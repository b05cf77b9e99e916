// Package avalanche implements the non-cryptographic 32-bit hash primitive
// used to derive bucket tags for the butterfly network of bucket ORP. The
// bitonic network does not use it: it compares on π(key) directly. spec.md §1 marks this as an "external collaborator"
// — it only needs to behave like MurmurHash3's finalizer (uniform avalanche,
// no cryptographic strength required) — so this package is a minimal,
// dependency-free mixer rather than a full MurmurHash3 port.
package avalanche

// Hasher produces a seeded 32-bit avalanche hash of a key. Two Hashers
// constructed with different seeds behave as independent hash functions,
// which is what lets bucket ORP (spec.md §4.5) derive fresh per-call tag
// functions by incrementing the seed.
type Hasher struct {
	seed uint32
}

// New returns a Hasher seeded with seed.
func New(seed uint32) Hasher {
	return Hasher{seed: seed}
}

// Seed returns the seed this Hasher was constructed with.
func (h Hasher) Seed() uint32 {
	return h.seed
}

// Hash32 mixes key with the hasher's seed and returns a uniformly
// distributed 32-bit value. This is the fmix32 finalizer from MurmurHash3,
// applied to key^seed: it is not a cryptographic hash, only an avalanche
// one — a one-bit change in the input flips roughly half the output bits.
func (h Hasher) Hash32(key uint32) uint32 {
	x := key ^ h.seed
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return x
}

// Hash32Mod returns Hash32(key) mod m for m > 0. Used by bucket ORP to map
// a key to a destination bucket.
func (h Hasher) Hash32Mod(key uint32, m uint32) uint32 {
	return h.Hash32(key) % m
}
