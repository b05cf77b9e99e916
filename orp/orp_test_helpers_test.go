package orp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wCloudRain/orp/arraystore"
	"github.com/wCloudRain/orp/record"
)

// seedArray creates name with len(keys) slots and writes one real element
// per key, in order. It is the shared fixture every algorithm test starts
// from: an array of n distinct keys at indices 0..n-1.
func seedArray(t *testing.T, svc arraystore.Service, name Name, keys []uint32) {
	t.Helper()
	require.NoError(t, svc.Create(name, uint32(len(keys))))
	for i, k := range keys {
		require.NoError(t, svc.Put(name, uint32(i), record.Element{Key: k}))
	}
}

// readKeys reads length elements from name and returns their keys in index
// order.
func readKeys(t *testing.T, svc arraystore.Service, name Name, length uint32) []uint32 {
	t.Helper()
	out := make([]uint32, length)
	for i := uint32(0); i < length; i++ {
		e, err := svc.Get(name, i)
		require.NoError(t, err)
		require.False(t, e.IsDummy(), "dummy at output index %d", i)
		require.Zero(t, e.Aux, "nonzero aux at output index %d", i)
		out[i] = e.Key
	}
	return out
}

// identityKeys returns [0,n).
func identityKeys(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}

// fixedOracle builds a PermutationOracle realizing exactly pi, bypassing the
// random Fisher-Yates shuffle so algorithm tests can check concrete named
// permutations (identity, reverse, cyclic shift) against spec.md §8's
// concrete scenarios.
func fixedOracle(pi []uint32) *PermutationOracle {
	invPi := make([]uint32, len(pi))
	for k, v := range pi {
		invPi[v] = uint32(k)
	}
	return &PermutationOracle{
		n:     uint32(len(pi)),
		pi:    pi,
		invPi: invPi,
	}
}

func reversePi(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(n - 1 - i)
	}
	return out
}

func cyclicShiftPi(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32((i + 1) % n)
	}
	return out
}
