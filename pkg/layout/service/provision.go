// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db"
	"github.com/Ai-Chetan/NexusGrid/pkg/logger"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"
)

// provisionCreate creates the linked entity for a freshly inserted node,
// inside the same transaction: a lab for a room, an asset for equipment.
// Structural types (building, floor) have no linked entity.
func (s *serviceImpl) provisionCreate(ctx context.Context, tx db.TxStore, node *types.Node, actor string) error {
	switch {
	case node.Type.IsRoom():
		location, err := ancestorLocation(ctx, tx, node.ID)
		if err != nil {
			return err
		}
		lab := &types.Lab{
			ItemID:   node.ID,
			Name:     node.Name,
			Location: location,
		}
		if err := tx.CreateLab(ctx, lab); err != nil {
			return wrapError(ErrCodeInternal, "provision lab", err)
		}

	case node.Type.IsEquipment():
		labID, err := nearestAncestorLab(ctx, tx, node.ID)
		if err != nil {
			return err
		}
		asset := &types.Asset{
			ItemID:    node.ID,
			LabID:     labID,
			HostName:  node.Name,
			Status:    types.AssetActive,
			UpdatedBy: actor,
		}
		if err := tx.CreateAsset(ctx, asset); err != nil {
			return wrapError(ErrCodeInternal, "provision asset", err)
		}
	}
	return nil
}

// provisionRename mirrors a node rename onto its linked entity. A
// missing record is logged, not fatal: the node is the source of truth.
func (s *serviceImpl) provisionRename(ctx context.Context, tx db.TxStore, node *types.Node) error {
	switch {
	case node.Type.IsRoom():
		if err := tx.RenameLab(ctx, node.ID, node.Name); err != nil {
			if errors.Is(err, db.ErrLabNotFound) {
				logger.Ctx(ctx).Warn().Int64("item_id", node.ID).Msg("room has no lab record to rename")
				return nil
			}
			return wrapError(ErrCodeInternal, "rename lab", err)
		}
	case node.Type.IsEquipment():
		if err := tx.RenameAsset(ctx, node.ID, node.Name); err != nil {
			if errors.Is(err, db.ErrAssetNotFound) {
				logger.Ctx(ctx).Warn().Int64("item_id", node.ID).Msg("equipment has no asset record to rename")
				return nil
			}
			return wrapError(ErrCodeInternal, "rename asset", err)
		}
	}
	return nil
}

// provisionDelete removes a node's linked entity ahead of the node
// itself. Already-absent records are tolerated so deletes stay
// idempotent.
func (s *serviceImpl) provisionDelete(ctx context.Context, tx db.TxStore, node *types.Node) error {
	switch {
	case node.Type.IsRoom():
		if err := tx.DeleteLabByItem(ctx, node.ID); err != nil && !errors.Is(err, db.ErrLabNotFound) {
			return wrapError(ErrCodeInternal, "delete lab", err)
		}
	case node.Type.IsEquipment():
		if err := tx.DeleteAssetByItem(ctx, node.ID); err != nil && !errors.Is(err, db.ErrAssetNotFound) {
			return wrapError(ErrCodeInternal, "delete asset", err)
		}
	}
	return nil
}

// ancestorLocation renders a node's placement as its ancestor names
// root-first, joined with " > " (e.g. "Main Building > Floor 2").
func ancestorLocation(ctx context.Context, store db.NodeStore, nodeID int64) (string, error) {
	ancestors, err := store.ListAncestors(ctx, nodeID)
	if err != nil {
		return "", wrapError(ErrCodeInternal, "list ancestors", err)
	}
	names := make([]string, len(ancestors))
	for i, a := range ancestors {
		names[i] = a.Name
	}
	return strings.Join(names, " > "), nil
}

// nearestAncestorLab finds the lab of the closest ancestor room, or nil
// when no ancestor carries one. Equipment normally sits directly in a
// room but the walk tolerates deeper nesting and missing lab records.
func nearestAncestorLab(ctx context.Context, store db.TxStore, nodeID int64) (*int64, error) {
	ancestors, err := store.ListAncestors(ctx, nodeID)
	if err != nil {
		return nil, wrapError(ErrCodeInternal, "list ancestors", err)
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		if !ancestors[i].Type.IsRoom() {
			continue
		}
		lab, err := store.GetLabByItem(ctx, ancestors[i].ID)
		if err != nil {
			if errors.Is(err, db.ErrLabNotFound) {
				continue
			}
			return nil, wrapError(ErrCodeInternal, "load ancestor lab", err)
		}
		id := lab.ID
		return &id, nil
	}
	return nil, nil
}
