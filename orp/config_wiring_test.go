package orp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wCloudRain/orp/arraystore"
	"github.com/wCloudRain/orp/config"
)

func TestNewBucketFromConfig(t *testing.T) {
	n := uint32(200)
	svc := arraystore.NewMemoryService()
	seedArray(t, svc, Name(1), identityKeys(int(n)))

	bk, err := NewBucketFromConfig(svc, n, config.Default(), 11)
	require.NoError(t, err)

	out, err := bk.Permute(Name(1))
	require.NoError(t, err)
	got := readKeys(t, svc, out, n)
	require.Len(t, got, int(n))
}

func TestNewBucketFromConfigRejectsInvalidConfig(t *testing.T) {
	svc := arraystore.NewMemoryService()
	bad := config.Default()
	bad.BucketZ = 3
	_, err := NewBucketFromConfig(svc, 100, bad, 1)
	require.ErrorIs(t, err, config.ErrBucketZ)
}

func TestNewMelbourneFromConfig(t *testing.T) {
	n := uint32(300)
	svc := arraystore.NewMemoryService()
	seedArray(t, svc, Name(1), identityKeys(int(n)))

	m, err := NewMelbourneFromConfig(svc, n, config.Default(), 22)
	require.NoError(t, err)

	out, err := m.Permute(Name(1))
	require.NoError(t, err)
	got := readKeys(t, svc, out, n)
	require.Len(t, got, int(n))
}

func TestNewMelbourneFromConfigRejectsInvalidConfig(t *testing.T) {
	svc := arraystore.NewMemoryService()
	bad := config.Default()
	bad.MelbourneP1 = 0
	_, err := NewMelbourneFromConfig(svc, 100, bad, 1)
	require.ErrorIs(t, err, config.ErrMelbourneMultiplier)
}
