// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package types contains the core domain types for the facility layout
// hierarchy: layout items, labs, assets and the hierarchy rules that
// constrain how items nest.
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemType identifies the kind of a layout item.
type ItemType string

const (
	ItemBuilding      ItemType = "building"
	ItemFloor         ItemType = "floor"
	ItemRoom          ItemType = "room"
	ItemComputer      ItemType = "computer"
	ItemServer        ItemType = "server"
	ItemNetworkSwitch ItemType = "network_switch"
	ItemRouter        ItemType = "router"
	ItemPrinter       ItemType = "printer"
	ItemUPS           ItemType = "ups"
	ItemRack          ItemType = "rack"
)

// AllItemTypes lists every valid item type in display order.
var AllItemTypes = []ItemType{
	ItemBuilding,
	ItemFloor,
	ItemRoom,
	ItemComputer,
	ItemServer,
	ItemNetworkSwitch,
	ItemRouter,
	ItemPrinter,
	ItemUPS,
	ItemRack,
}

// ParseItemType validates a wire value and returns the matching ItemType.
func ParseItemType(s string) (ItemType, error) {
	for _, t := range AllItemTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// IsEquipment reports whether the type is a leaf equipment type
// (anything placeable inside a room).
func (t ItemType) IsEquipment() bool {
	switch t {
	case ItemComputer, ItemServer, ItemNetworkSwitch, ItemRouter, ItemPrinter, ItemUPS, ItemRack:
		return true
	}
	return false
}

// IsRoom reports whether the type carries an associated Lab.
func (t ItemType) IsRoom() bool {
	return t == ItemRoom
}

// Node is one entry in the facility hierarchy tree.
//
// ID is the primary identifier assigned at creation and immutable. UUID is
// a globally unique secondary identifier, generated once and never reused.
// ParentID is nil only for root-eligible types.
type Node struct {
	ID       int64
	UUID     uuid.UUID
	Name     string
	Type     ItemType
	ParentID *int64

	PositionX int
	PositionY int
	Width     int
	Height    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClampGeometry forces geometry into the non-negative ranges the renderer
// expects. Width and height have a floor of one grid cell.
func (n *Node) ClampGeometry() {
	if n.PositionX < 0 {
		n.PositionX = 0
	}
	if n.PositionY < 0 {
		n.PositionY = 0
	}
	if n.Width < 1 {
		n.Width = 1
	}
	if n.Height < 1 {
		n.Height = 1
	}
}
