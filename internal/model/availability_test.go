package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAvailability(t *testing.T) {
	lines := []LineRequest{
		{ProductID: "p1", ProductName: "Widget", Quantity: 5},
		{ProductID: "p2", ProductName: "Gadget", Quantity: 1},
		{ProductID: "p3", ProductName: "Gizmo", Quantity: 2},
	}
	shortages := CheckAvailability(lines, map[string]int{"p1": 3, "p2": 1})

	require.Len(t, shortages, 2)
	assert.Equal(t, Shortage{ProductID: "p1", ProductName: "Widget", Requested: 5, Available: 3}, shortages[0])
	assert.Equal(t, 2, shortages[0].Deficit())
	assert.True(t, shortages[1].Missing)
	assert.Equal(t, 0, shortages[1].Available)
}

func TestPickAlternatives(t *testing.T) {
	shortages := []Shortage{{ProductID: "p1", Requested: 5}}
	candidates := []Stock{
		{ProductID: "p1", WarehouseID: "w1", WarehouseName: "Main", Quantity: 100},
		{ProductID: "p1", WarehouseID: "w2", WarehouseName: "North", Quantity: 5},
		{ProductID: "p1", WarehouseID: "w3", WarehouseName: "South", Quantity: 4},
		{ProductID: "p9", WarehouseID: "w2", WarehouseName: "North", Quantity: 50},
	}

	alts := PickAlternatives(shortages, candidates, "w1")

	require.Len(t, alts, 1)
	assert.Equal(t, Alternative{ProductID: "p1", WarehouseID: "w2", WarehouseName: "North", Available: 5}, alts[0])
}

func TestStockShortageErrorMessage(t *testing.T) {
	err := &StockShortageError{
		WarehouseName: "Main",
		Shortages:     []Shortage{{ProductID: "p1", ProductName: "Widget", Requested: 5, Available: 3}},
		Alternatives: []Alternative{
			{ProductID: "p1", WarehouseName: "North", Available: 9},
			{ProductID: "p1", WarehouseName: "South", Available: 7},
		},
	}

	assert.True(t, errors.Is(err, ErrInsufficientStock))

	msg := err.Localize("en")
	assert.Contains(t, msg, "insufficient stock at Main")
	assert.Contains(t, msg, "Widget: requested 5 units, only 3 available (shortage: 2 units)")
	assert.Contains(t, msg, "Widget is available at North (9 units)")
	assert.Contains(t, msg, "change the order warehouse")

	err.DetailsHidden = true
	msg = err.Localize("en")
	assert.NotContains(t, msg, "North")
	assert.Contains(t, msg, "Widget is available at 2 other company locations.")
	assert.Contains(t, msg, "Contact an administrator")
}

func TestStockShortageErrorWithoutAlternatives(t *testing.T) {
	err := &StockShortageError{
		WarehouseName: "Main",
		Shortages:     []Shortage{{ProductID: "p1", ProductName: "Widget", Requested: 2, Missing: true}},
	}

	msg := err.Error()
	assert.Contains(t, msg, "not available at Main")
	assert.Contains(t, msg, "Widget is not available at any warehouse")
	assert.NotContains(t, msg, "Suggestion")
}
