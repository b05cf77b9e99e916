// Package config bundles the algorithm parameters spec.md §6 leaves to the
// caller — Bucket's capacity Z and Melbourne's dummy-padding multipliers
// p1/p2 — into one struct with a Default and a Validate, the way
// BuddyAnonymous-kv-engine/internal/config.Config bundles a storage engine's
// tunables rather than leaving every constructor call site to pick and check
// its own numbers.
package config

import "errors"

var (
	// ErrBucketZ reports a Bucket capacity that cannot be used: Z must be a
	// positive even number, since the butterfly network's first level splits
	// a Z/2-wide slice of the input into two halves of an output bucket.
	ErrBucketZ = errors.New("config: BucketZ must be positive and even")
	// ErrMelbourneMultiplier reports a Melbourne dummy-padding multiplier
	// (P1 or P2) that is not a positive integer.
	ErrMelbourneMultiplier = errors.New("config: MelbourneP1 and MelbourneP2 must be positive")
)

// Config holds the parameters NewBucketFromConfig and NewMelbourneFromConfig
// need beyond n and a seed.
type Config struct {
	// BucketZ is the per-bucket capacity Bucket's butterfly network uses.
	BucketZ uint32
	// MelbourneP1 and MelbourneP2 are the dummy-padding multipliers for
	// Melbourne's first and second distribution phases, respectively.
	MelbourneP1 uint32
	MelbourneP2 uint32
}

// Default returns the parameter set this library's own benchmarks use: a
// bucket capacity of 256, the low end of spec.md §4.5's "typical >= 256"
// guidance, and dummy-padding multipliers of 5 for both Melbourne
// distribution phases, matching the reference implementation's defaults.
func Default() Config {
	return Config{
		BucketZ:     256,
		MelbourneP1: 5,
		MelbourneP2: 5,
	}
}

// Validate reports whether c's fields are structurally usable by
// NewBucketFromConfig and NewMelbourneFromConfig. It does not judge whether
// they are large enough to avoid overflow at a particular n — that is a
// property of the run, not of the config.
func (c Config) Validate() error {
	if c.BucketZ == 0 || c.BucketZ%2 != 0 {
		return ErrBucketZ
	}
	if c.MelbourneP1 == 0 || c.MelbourneP2 == 0 {
		return ErrMelbourneMultiplier
	}
	return nil
}
