// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"time"
)

// AssetStatus is the operational state of a piece of equipment.
type AssetStatus string

const (
	AssetActive        AssetStatus = "active"
	AssetInactive      AssetStatus = "inactive"
	AssetNonFunctional AssetStatus = "non-functional"
)

// ParseAssetStatus validates a wire value and returns the matching status.
func ParseAssetStatus(s string) (AssetStatus, error) {
	switch AssetStatus(s) {
	case AssetActive, AssetInactive, AssetNonFunctional:
		return AssetStatus(s), nil
	}
	return "", fmt.Errorf("unknown asset status %q", s)
}

// Asset is the operational record attached 1:1 to an equipment node.
//
// LabID references the lab of the nearest ancestor room at creation time.
// It is nil when no ancestor lab existed yet (a room created in the same
// editing session may not have been reconciled); the missing link is
// recorded rather than dropped.
type Asset struct {
	ID     int64
	ItemID int64
	LabID  *int64

	HostName string // mirrors the equipment node's name
	Status   AssetStatus

	UpdatedAt time.Time
	UpdatedBy string
}
