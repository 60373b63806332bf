package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedOrder(id, maker string, status Status) Order {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return Order{
		ID:           id,
		Maker:        maker,
		Source:       Asset{Token: "0xWETH", ChainID: 1},
		Dest:         Asset{Token: "0xUSDC", ChainID: 1},
		SourceAmount: dec("100"),
		StartPrice:   dec("3200"),
		EndPrice:     dec("3200"),
		Kind:         KindLimit,
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
		Status:       status,
	}
}

func TestStoreAddGet(t *testing.T) {
	s := NewStore()
	s.Add(storedOrder("a", "m1", StatusActive))

	o, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "m1", o.Maker)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Add(storedOrder("a", "m1", StatusActive))

	o, _ := s.Get("a")
	o.Status = StatusCancelled

	again, _ := s.Get("a")
	assert.Equal(t, StatusActive, again.Status, "mutating a copy must not touch the store")
}

func TestStoreUpdate(t *testing.T) {
	s := NewStore()
	s.Add(storedOrder("a", "m1", StatusActive))

	o, err := s.Update("a", func(o *Order) error {
		o.Filled = dec("25")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, o.Filled.Equal(dec("25")))

	_, err = s.Update("missing", func(o *Order) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestStoreListFilters(t *testing.T) {
	s := NewStore()
	s.Add(storedOrder("a", "m1", StatusActive))
	s.Add(storedOrder("b", "m1", StatusFilled))
	s.Add(storedOrder("c", "m2", StatusActive))

	assert.Len(t, s.List(nil), 3)
	assert.Len(t, s.List(func(o Order) bool { return o.Maker == "m1" }), 2)
	assert.ElementsMatch(t, []string{"a", "c"}, s.ActiveIDs())
	assert.Equal(t, 3, s.Len())
}
