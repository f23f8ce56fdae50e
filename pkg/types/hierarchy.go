// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"strings"
)

// validChildTypes maps a parent item type to the set of types that may be
// placed directly under it. The empty ItemType key holds the root rules.
// Equipment types accept no children.
var validChildTypes = map[ItemType][]ItemType{
	"":           {ItemBuilding},
	ItemBuilding: {ItemFloor},
	ItemFloor:    {ItemRoom},
	ItemRoom: {
		ItemComputer,
		ItemServer,
		ItemNetworkSwitch,
		ItemRouter,
		ItemPrinter,
		ItemUPS,
		ItemRack,
	},
}

// PermittedChildren returns the item types allowed directly under a parent
// of the given type. Pass nil for the root level.
func PermittedChildren(parent *ItemType) []ItemType {
	key := ItemType("")
	if parent != nil {
		key = *parent
	}
	return validChildTypes[key]
}

// ValidateChild checks whether a child of the given type may be placed
// under a parent of the given type (nil parent means root). The returned
// error names the parent level and lists the valid child types; the API
// layer surfaces the message verbatim.
func ValidateChild(parent *ItemType, child ItemType) error {
	allowed := PermittedChildren(parent)
	for _, t := range allowed {
		if t == child {
			return nil
		}
	}

	level := "root"
	if parent != nil {
		level = string(*parent)
	}
	if len(allowed) == 0 {
		return fmt.Errorf("a %s cannot contain child items", level)
	}

	names := make([]string, len(allowed))
	for i, t := range allowed {
		names[i] = string(t)
	}
	return fmt.Errorf("a %s may only contain: %s", level, strings.Join(names, ", "))
}
