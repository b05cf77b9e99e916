package orp

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/wCloudRain/orp/arraystore"
	"github.com/wCloudRain/orp/record"
)

// checkUniversalProperties runs spec.md §8's universal properties against a
// freshly permuted array: every key k sits at GetPi(k) (property 1), the
// output holds each of the n keys exactly once (property 2, losslessness),
// every output slot holds a real element (property 3, no dummies), and every
// output element's Aux is cleared (property 4). GetInvPi is not checked here.
func checkUniversalProperties(svc arraystore.Service, orpAlg ORP, inputName Name, n uint32) bool {
	out, err := orpAlg.Permute(inputName)
	if err != nil {
		return false
	}

	seen := make(map[uint32]bool, n)
	for i := uint32(0); i < n; i++ {
		e, err := svc.Get(out, i)
		if err != nil || e.IsDummy() || e.Aux != 0 {
			return false
		}
		if orpAlg.GetPi(e.Key) != i {
			return false
		}
		if seen[e.Key] {
			return false
		}
		seen[e.Key] = true
	}
	return len(seen) == int(n)
}

func identityArray(svc arraystore.Service, name Name, n uint32) {
	keys := make([]uint32, n)
	for i := range keys {
		keys[i] = uint32(i)
	}
	_ = svc.Create(name, n)
	for i, k := range keys {
		_ = svc.Put(name, uint32(i), record.Element{Key: k})
	}
}

func TestBitonicSatisfiesUniversalProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("bitonic permutes without loss, dummies, or residual aux", prop.ForAll(
		func(logN uint32, seed int64) bool {
			n := uint32(1) << logN
			svc := arraystore.NewMemoryService()
			identityArray(svc, Name(1), n)

			b, err := NewBitonic(svc, n, seed)
			if err != nil {
				return false
			}
			return checkUniversalProperties(svc, b, Name(1), n)
		},
		gen.UInt32Range(1, 8),
		gen.Int64Range(1, 1<<30),
	))

	properties.TestingRun(t)
}

func TestBucketSatisfiesUniversalProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("bucket permutes without loss, dummies, or residual aux", prop.ForAll(
		func(n uint32, seed int64) bool {
			svc := arraystore.NewMemoryService()
			identityArray(svc, Name(1), n)

			bk, err := NewBucket(svc, n, 256, seed)
			if err != nil {
				return false
			}
			return checkUniversalProperties(svc, bk, Name(1), n)
		},
		gen.UInt32Range(1, 2000),
		gen.Int64Range(1, 1<<30),
	))

	properties.TestingRun(t)
}

func TestMelbourneSatisfiesUniversalProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("melbourne permutes without loss, dummies, or residual aux", prop.ForAll(
		func(n uint32, seed int64) bool {
			svc := arraystore.NewMemoryService()
			identityArray(svc, Name(1), n)

			m, err := NewMelbourne(svc, n, 5, 5, seed)
			if err != nil {
				return false
			}
			return checkUniversalProperties(svc, m, Name(1), n)
		},
		gen.UInt32Range(2, 2000),
		gen.Int64Range(1, 1<<30),
	))

	properties.TestingRun(t)
}

func TestWaksmanSatisfiesUniversalProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("waksman permutes without loss, dummies, or residual aux", prop.ForAll(
		func(n uint32, seed int64) bool {
			svc := arraystore.NewMemoryService()
			identityArray(svc, Name(1), n)

			w, err := NewWaksman(svc, n, seed)
			if err != nil {
				return false
			}
			return checkUniversalProperties(svc, w, Name(1), n)
		},
		gen.UInt32Range(2, 2000),
		gen.Int64Range(1, 1<<30),
	))

	properties.TestingRun(t)
}

// TestBucketIOIsLinearithmic exercises spec.md §8 property 6 for Bucket: its
// I/O cost stays within a constant factor of n*log(n), the way
// TestBucketIOBoundedAtScale bounds it, but driven by gopter across a range
// of n rather than one fixed size.
func TestBucketIOIsLinearithmic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("bucket IO stays within C*n*log(n)", prop.ForAll(
		func(n uint32, seed int64) bool {
			svc := arraystore.NewMemoryService()
			identityArray(svc, Name(1), n)
			svc.ResetIO()

			bk, err := NewBucket(svc, n, 256, seed)
			if err != nil {
				return false
			}
			if _, err := bk.Permute(Name(1)); err != nil {
				return false
			}

			logN := uint64(1)
			for x := uint64(1); x < uint64(n); x *= 2 {
				logN++
			}
			return svc.IOCount() <= uint64(40)*uint64(n)*logN
		},
		gen.UInt32Range(8, 2000),
		gen.Int64Range(1, 1<<30),
	))

	properties.TestingRun(t)
}
