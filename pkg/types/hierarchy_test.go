// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermittedChildren(t *testing.T) {
	t.Parallel()

	building := ItemBuilding
	floor := ItemFloor
	room := ItemRoom
	computer := ItemComputer

	tests := []struct {
		name   string
		parent *ItemType
		want   []ItemType
	}{
		{name: "root allows buildings only", parent: nil, want: []ItemType{ItemBuilding}},
		{name: "building allows floors", parent: &building, want: []ItemType{ItemFloor}},
		{name: "floor allows rooms", parent: &floor, want: []ItemType{ItemRoom}},
		{
			name:   "room allows all equipment",
			parent: &room,
			want: []ItemType{
				ItemComputer, ItemServer, ItemNetworkSwitch,
				ItemRouter, ItemPrinter, ItemUPS, ItemRack,
			},
		},
		{name: "equipment allows nothing", parent: &computer, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PermittedChildren(tt.parent))
		})
	}
}

func TestValidateChild(t *testing.T) {
	t.Parallel()

	floor := ItemFloor
	printer := ItemPrinter

	t.Run("every parent-child pair", func(t *testing.T) {
		t.Parallel()
		// Exhaustive grid: a pair is valid iff the hierarchy table
		// lists it, nothing else sneaks through.
		parents := append([]*ItemType{nil}, typePtrs(AllItemTypes)...)
		for _, parent := range parents {
			allowed := map[ItemType]bool{}
			for _, c := range PermittedChildren(parent) {
				allowed[c] = true
			}
			for _, child := range AllItemTypes {
				err := ValidateChild(parent, child)
				if allowed[child] {
					assert.NoError(t, err)
				} else {
					assert.Error(t, err)
				}
			}
		}
	})

	t.Run("error names the parent level and allowed types", func(t *testing.T) {
		t.Parallel()
		err := ValidateChild(&floor, ItemComputer)
		require.Error(t, err)
		assert.Equal(t, "a floor may only contain: room", err.Error())

		err = ValidateChild(nil, ItemRoom)
		require.Error(t, err)
		assert.Equal(t, "a root may only contain: building", err.Error())
	})

	t.Run("equipment cannot contain children", func(t *testing.T) {
		t.Parallel()
		err := ValidateChild(&printer, ItemComputer)
		require.Error(t, err)
		assert.Equal(t, "a printer cannot contain child items", err.Error())
	})
}

func TestParseItemType(t *testing.T) {
	t.Parallel()

	for _, want := range AllItemTypes {
		got, err := ParseItemType(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseItemType("warehouse")
	assert.Error(t, err)
}

func TestClampGeometry(t *testing.T) {
	t.Parallel()

	n := &Node{PositionX: -4, PositionY: -1, Width: 0, Height: -2}
	n.ClampGeometry()
	assert.Equal(t, 0, n.PositionX)
	assert.Equal(t, 0, n.PositionY)
	assert.Equal(t, 1, n.Width)
	assert.Equal(t, 1, n.Height)

	n = &Node{PositionX: 3, PositionY: 7, Width: 2, Height: 5}
	n.ClampGeometry()
	assert.Equal(t, 3, n.PositionX)
	assert.Equal(t, 2, n.Width)
}

func typePtrs(ts []ItemType) []*ItemType {
	out := make([]*ItemType, len(ts))
	for i := range ts {
		out[i] = &ts[i]
	}
	return out
}
