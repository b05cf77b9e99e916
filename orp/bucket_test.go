package orp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wCloudRain/orp/arraystore"
)

func TestBucketPermutationCorrectness(t *testing.T) {
	n := uint32(200)
	svc := arraystore.NewMemoryService()
	seedArray(t, svc, Name(1), identityKeys(int(n)))

	b, err := NewBucket(svc, n, 32, 11)
	require.NoError(t, err)

	out, err := b.Permute(Name(1))
	require.NoError(t, err)

	got := readKeys(t, svc, out, n)
	require.Len(t, got, int(n))
	seen := make(map[uint32]bool, n)
	for k := uint32(0); k < n; k++ {
		require.Equal(t, k, got[b.GetPi(k)])
		seen[got[k]] = true
	}
	require.Len(t, seen, int(n))
}

func TestBucketIOBoundedAtScale(t *testing.T) {
	n := uint32(1024)
	svc := arraystore.NewMemoryService()
	seedArray(t, svc, Name(1), identityKeys(int(n)))
	svc.ResetIO()

	b, err := NewBucket(svc, n, 128, 99)
	require.NoError(t, err)

	out, err := b.Permute(Name(1))
	require.NoError(t, err)
	_ = readKeys(t, svc, out, n)

	logN := uint64(0)
	for x := uint64(1); x < uint64(n); x *= 2 {
		logN++
	}
	require.LessOrEqual(t, svc.IOCount(), uint64(30)*uint64(n)*logN)
}

func TestBucketRejectsOddZ(t *testing.T) {
	_, err := NewBucket(arraystore.NewMemoryService(), 8, 5, 1)
	require.ErrorIs(t, err, ErrInvalidLength)
}
