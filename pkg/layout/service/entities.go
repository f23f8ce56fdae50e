// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/cache"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"

	"github.com/google/uuid"
)

func (s *serviceImpl) NodeByUUID(ctx context.Context, id uuid.UUID) (*types.Node, error) {
	node, err := s.db.GetNodeByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNodeNotFound) {
			return nil, newError(ErrCodeNodeNotFound, "layout item not found")
		}
		return nil, wrapError(ErrCodeInternal, "load item", err)
	}
	return node, nil
}

func (s *serviceImpl) LabForRoom(ctx context.Context, nodeID int64) (*types.Lab, error) {
	lab, err := s.db.GetLabByItem(ctx, nodeID)
	if err != nil {
		if errors.Is(err, db.ErrLabNotFound) {
			return nil, newError(ErrCodeLabNotFound, "no lab for this item")
		}
		return nil, wrapError(ErrCodeInternal, "load lab", err)
	}
	return lab, nil
}

func (s *serviceImpl) AssetForNode(ctx context.Context, nodeID int64) (*types.Asset, error) {
	asset, err := s.db.GetAssetByItem(ctx, nodeID)
	if err != nil {
		if errors.Is(err, db.ErrAssetNotFound) {
			return nil, newError(ErrCodeAssetNotFound, "no asset for this item")
		}
		return nil, wrapError(ErrCodeInternal, "load asset", err)
	}
	return asset, nil
}

func (s *serviceImpl) AssetsForLab(ctx context.Context, labID int64) ([]*types.Asset, error) {
	if _, err := s.db.GetLab(ctx, labID); err != nil {
		if errors.Is(err, db.ErrLabNotFound) {
			return nil, newError(ErrCodeLabNotFound, "lab not found")
		}
		return nil, wrapError(ErrCodeInternal, "load lab", err)
	}
	assets, err := s.db.ListAssetsByLab(ctx, labID)
	if err != nil {
		return nil, wrapError(ErrCodeInternal, "list assets", err)
	}
	return assets, nil
}

func (s *serviceImpl) UpdateLabDetails(ctx context.Context, labID int64, req *LabDetailsRequest) error {
	if req == nil || (req.Capacity == nil && req.Dimension == nil && req.QuickInfo == nil) {
		return newError(ErrCodeValidation, "empty update")
	}
	if req.Capacity != nil && *req.Capacity < 0 {
		return newError(ErrCodeValidation, "capacity cannot be negative")
	}
	err := s.db.UpdateLabDetails(ctx, labID, req.Capacity, req.Dimension, req.QuickInfo)
	if err != nil {
		if errors.Is(err, db.ErrLabNotFound) {
			return newError(ErrCodeLabNotFound, "lab not found")
		}
		return wrapError(ErrCodeInternal, "update lab", err)
	}
	return nil
}

// AssignStaff enforces the per-role lab limit inside the same
// transaction as the insert so concurrent assignments cannot both pass
// the check.
func (s *serviceImpl) AssignStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error {
	if userID == "" {
		return newError(ErrCodeValidation, "user id is required")
	}
	if role != types.RoleInstructor && role != types.RoleAssistant {
		return newError(ErrCodeValidation, fmt.Sprintf("unknown staff role %q", role))
	}

	err := s.db.WithTx(ctx, func(tx db.TxStore) error {
		if _, err := tx.GetLab(ctx, labID); err != nil {
			if errors.Is(err, db.ErrLabNotFound) {
				return newError(ErrCodeLabNotFound, "lab not found")
			}
			return wrapError(ErrCodeInternal, "load lab", err)
		}
		count, err := tx.CountStaffLabs(ctx, userID, role)
		if err != nil {
			return wrapError(ErrCodeInternal, "count assignments", err)
		}
		limit := s.limits.ForRole(role)
		if count >= int64(limit) {
			return newError(ErrCodeRoleLimitReached,
				fmt.Sprintf("user %s already assigned to %d labs as %s (limit %d)", userID, count, role, limit))
		}
		if err := tx.AddStaff(ctx, labID, userID, role); err != nil {
			return wrapError(ErrCodeInternal, "add staff", err)
		}
		return nil
	})
	return asNilOrServiceError(err)
}

func (s *serviceImpl) RemoveStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error {
	if err := s.db.RemoveStaff(ctx, labID, userID, role); err != nil {
		return wrapError(ErrCodeInternal, "remove staff", err)
	}
	return nil
}

func (s *serviceImpl) ListStaff(ctx context.Context, labID int64) ([]*types.StaffAssignment, error) {
	if _, err := s.db.GetLab(ctx, labID); err != nil {
		if errors.Is(err, db.ErrLabNotFound) {
			return nil, newError(ErrCodeLabNotFound, "lab not found")
		}
		return nil, wrapError(ErrCodeInternal, "load lab", err)
	}
	staff, err := s.db.ListStaff(ctx, labID)
	if err != nil {
		return nil, wrapError(ErrCodeInternal, "list staff", err)
	}
	return staff, nil
}

func (s *serviceImpl) UpdateAssetStatus(ctx context.Context, nodeID int64, status types.AssetStatus, updatedBy string) error {
	if _, err := types.ParseAssetStatus(string(status)); err != nil {
		return wrapError(ErrCodeValidation, "invalid asset status", err)
	}

	var parentID *int64
	err := s.db.WithTx(ctx, func(tx db.TxStore) error {
		node, err := tx.GetNode(ctx, nodeID)
		if err != nil {
			if errors.Is(err, db.ErrNodeNotFound) {
				return newError(ErrCodeNodeNotFound, "layout item not found")
			}
			return wrapError(ErrCodeInternal, "load item", err)
		}
		if err := tx.UpdateAssetStatus(ctx, nodeID, status, updatedBy); err != nil {
			if errors.Is(err, db.ErrAssetNotFound) {
				return newError(ErrCodeAssetNotFound, "no asset for this item")
			}
			return wrapError(ErrCodeInternal, "update asset status", err)
		}
		parentID = node.ParentID
		return nil
	})
	if err != nil {
		return asServiceError(err)
	}

	// Children listings carry the status, so the parent entry is stale.
	s.invalidate(ctx, cache.ChildrenKey(parentID))
	return nil
}

func asNilOrServiceError(err error) error {
	if err == nil {
		return nil
	}
	return asServiceError(err)
}
