// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache provides the subtree cache: materialized direct-children
// listings keyed by parent, with TTL expiry as a safety net and explicit
// invalidation on every mutation. The cache is an optimization only;
// a cold cache must produce identical results to a warm one, and read
// errors degrade to misses.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/Ai-Chetan/NexusGrid/pkg/types"
)

// DefaultTTL bounds how stale an entry can get if an invalidation is
// ever missed.
const DefaultTTL = 5 * time.Minute

// RootKey is the cache key for the root-level listing.
const RootKey = "layout:children:root"

// ChildrenKey returns the cache key for a parent's direct-children
// listing. Pass nil for the root level.
func ChildrenKey(parentID *int64) string {
	if parentID == nil {
		return RootKey
	}
	return "layout:children:" + strconv.FormatInt(*parentID, 10)
}

// ChildSummary is one row of a cached children listing, shaped for the
// lazy-loading layout UI: enough to render the item plus a has_children
// flag so the client knows whether it can drill down.
type ChildSummary struct {
	ID          int64              `json:"id"`
	UUID        string             `json:"uuid"`
	Name        string             `json:"name"`
	Type        types.ItemType     `json:"item_type"`
	PositionX   int                `json:"position_x"`
	PositionY   int                `json:"position_y"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	HasChildren bool               `json:"has_children"`
	AssetStatus *types.AssetStatus `json:"status,omitempty"`
}

// SubtreeCache caches children listings by key.
type SubtreeCache interface {
	// GetChildren returns the cached listing for a key and whether the
	// key was present. An error is a backend failure, never a miss.
	GetChildren(ctx context.Context, key string) ([]ChildSummary, bool, error)

	// SetChildren stores a listing under a key with the cache's TTL.
	SetChildren(ctx context.Context, key string, items []ChildSummary) error

	// Invalidate removes a key. Removing an absent key is not an error.
	Invalidate(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
