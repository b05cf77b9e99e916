package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsOddZ(t *testing.T) {
	c := Default()
	c.BucketZ = 255
	require.ErrorIs(t, c.Validate(), ErrBucketZ)
}

func TestValidateRejectsZeroZ(t *testing.T) {
	c := Default()
	c.BucketZ = 0
	require.ErrorIs(t, c.Validate(), ErrBucketZ)
}

func TestValidateRejectsZeroMultiplier(t *testing.T) {
	c := Default()
	c.MelbourneP1 = 0
	require.ErrorIs(t, c.Validate(), ErrMelbourneMultiplier)

	c = Default()
	c.MelbourneP2 = 0
	require.ErrorIs(t, c.Validate(), ErrMelbourneMultiplier)
}
