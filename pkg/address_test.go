package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneropulse/xvb-arbiter/testutil"
)

func validStandardAddress() string {
	return "4" + strings.Repeat("A", 94)
}

func TestValidateMoneroAddress(t *testing.T) {
	require.NoError(t, ValidateMoneroAddress(validStandardAddress()))
	require.NoError(t, ValidateMoneroAddress("8"+strings.Repeat("B", 94)))
	require.NoError(t, ValidateMoneroAddress("4"+strings.Repeat("C", 105)))

	assert.Error(t, ValidateMoneroAddress(""))
	assert.Error(t, ValidateMoneroAddress("4too-short"))
	assert.Error(t, ValidateMoneroAddress("9"+strings.Repeat("A", 94)), "invalid prefix")
	// base58 excludes 0, O, I and l
	assert.Error(t, ValidateMoneroAddress("4"+strings.Repeat("0", 94)))
}

func TestValidateMoneroAddress_Random(t *testing.T) {
	for i := 0; i < 10; i++ {
		address, err := testutil.RandomWalletAddress()
		require.NoError(t, err)
		assert.NoError(t, ValidateMoneroAddress(address))
	}
}
