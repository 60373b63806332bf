package route

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRoute() Route {
	return Route{
		SourceChainID: 1,
		DestChainID:   42793,
		SourceToken:   "0xWETH",
		DestToken:     "0xWETH.e",
		BridgeToken:   "0xUSDC",
		MinAmount:     decimal.NewFromInt(1_000_000),
		MaxAmount:     decimal.NewFromInt(1_000_000_000_000),
		Enabled:       true,
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry(nil)

	r := validRoute()
	require.NoError(t, reg.Register(r))

	same := validRoute()
	same.DestChainID = same.SourceChainID
	err := reg.Register(same)
	assert.ErrorIs(t, err, ErrInvalidRoute)

	zeroMin := validRoute()
	zeroMin.MinAmount = decimal.Zero
	assert.ErrorIs(t, reg.Register(zeroMin), ErrInvalidRoute)

	inverted := validRoute()
	inverted.MinAmount = decimal.NewFromInt(10)
	inverted.MaxAmount = decimal.NewFromInt(5)
	assert.ErrorIs(t, reg.Register(inverted), ErrInvalidRoute)
}

func TestFind(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(validRoute()))

	r, err := reg.Find(1, 42793, "0xWETH", "0xWETH.e")
	require.NoError(t, err)
	assert.Equal(t, "0xUSDC", r.BridgeToken)

	_, err = reg.Find(1, 42793, "0xWETH", "0xUSDT")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestAdmissibleBounds(t *testing.T) {
	reg := NewRegistry(nil)
	r := validRoute()

	assert.False(t, reg.Admissible(r, decimal.NewFromInt(500)))
	assert.True(t, reg.Admissible(r, decimal.NewFromInt(2_000_000)))
	assert.True(t, reg.Admissible(r, r.MinAmount))
	assert.True(t, reg.Admissible(r, r.MaxAmount))
	assert.False(t, reg.Admissible(r, r.MaxAmount.Add(decimal.NewFromInt(1))))

	r.Enabled = false
	assert.False(t, reg.Admissible(r, decimal.NewFromInt(2_000_000)))
}

func TestPreviewAdmissibility(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(validRoute()))

	ok, err := reg.PreviewAdmissibility(1, 42793, "0xWETH", "0xWETH.e", decimal.NewFromInt(2_000_000))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.PreviewAdmissibility(1, 42793, "0xWETH", "0xWETH.e", decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = reg.PreviewAdmissibility(10, 42793, "0xWETH", "0xWETH.e", decimal.NewFromInt(500))
	assert.True(t, errors.Is(err, ErrRouteNotFound))
}

func TestSetEnabledAndReplace(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(validRoute()))

	require.NoError(t, reg.SetEnabled(1, 42793, "0xWETH", "0xWETH.e", false))
	ok, err := reg.PreviewAdmissibility(1, 42793, "0xWETH", "0xWETH.e", decimal.NewFromInt(2_000_000))
	require.NoError(t, err)
	assert.False(t, ok)

	other := validRoute()
	other.SourceToken = "0xUSDC"
	other.DestToken = "0xUSDC.e"
	require.NoError(t, reg.Replace([]Route{other}))
	assert.Len(t, reg.Snapshot(), 1)

	_, err = reg.Find(1, 42793, "0xWETH", "0xWETH.e")
	assert.ErrorIs(t, err, ErrRouteNotFound)

	bad := validRoute()
	bad.MinAmount = decimal.Zero
	assert.ErrorIs(t, reg.Replace([]Route{bad}), ErrInvalidRoute)
}
