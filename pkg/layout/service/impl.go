// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/cache"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db"
	"github.com/Ai-Chetan/NexusGrid/pkg/logger"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"
)

type serviceImpl struct {
	db     db.DB
	cache  cache.SubtreeCache
	limits types.RoleLimits
}

// New creates the layout service. All dependencies are required.
func New(database db.DB, subtree cache.SubtreeCache, limits types.RoleLimits) (Service, error) {
	if database == nil {
		return nil, errors.New("service: database is required")
	}
	if subtree == nil {
		return nil, errors.New("service: subtree cache is required")
	}
	return &serviceImpl{
		db:     database,
		cache:  subtree,
		limits: limits,
	}, nil
}

func (s *serviceImpl) Children(ctx context.Context, parent ParentRef) ([]cache.ChildSummary, error) {
	key := cache.ChildrenKey(parent.idPtr())

	items, found, err := s.cache.GetChildren(ctx, key)
	if err != nil {
		// Cache failures degrade to misses; the store stays authoritative.
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("subtree cache read failed")
	}
	if found {
		return items, nil
	}

	if !parent.Root {
		if _, err := s.db.GetNode(ctx, parent.ID); err != nil {
			if errors.Is(err, db.ErrNodeNotFound) {
				return nil, newError(ErrCodeParentNotFound, "parent item not found")
			}
			return nil, wrapError(ErrCodeInternal, "load parent", err)
		}
	}

	items, err = s.loadChildren(ctx, s.db, parent.idPtr())
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetChildren(ctx, key, items); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("subtree cache write failed")
	}
	return items, nil
}

// loadChildren builds the summary listing straight from the store. The
// has_children flags come from one grouped count, not a query per child.
func (s *serviceImpl) loadChildren(ctx context.Context, store db.NodeStore, parentID *int64) ([]cache.ChildSummary, error) {
	nodes, err := store.ListChildren(ctx, parentID)
	if err != nil {
		return nil, wrapError(ErrCodeInternal, "list children", err)
	}

	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	counts := map[int64]int64{}
	if len(ids) > 0 {
		counts, err = store.CountChildrenByParent(ctx, ids)
		if err != nil {
			return nil, wrapError(ErrCodeInternal, "count children", err)
		}
	}

	items := make([]cache.ChildSummary, 0, len(nodes))
	for _, n := range nodes {
		summary := cache.ChildSummary{
			ID:          n.ID,
			UUID:        n.UUID.String(),
			Name:        n.Name,
			Type:        n.Type,
			PositionX:   n.PositionX,
			PositionY:   n.PositionY,
			Width:       n.Width,
			Height:      n.Height,
			HasChildren: counts[n.ID] > 0,
		}
		if n.Type.IsEquipment() {
			asset, err := s.db.GetAssetByItem(ctx, n.ID)
			switch {
			case err == nil:
				status := asset.Status
				summary.AssetStatus = &status
			case errors.Is(err, db.ErrAssetNotFound):
				// Node without an asset record; render without status.
			default:
				return nil, wrapError(ErrCodeInternal, "load asset status", err)
			}
		}
		items = append(items, summary)
	}
	return items, nil
}

func (s *serviceImpl) Ancestors(ctx context.Context, nodeID int64) ([]Breadcrumb, error) {
	node, err := s.db.GetNode(ctx, nodeID)
	if err != nil {
		if errors.Is(err, db.ErrNodeNotFound) {
			return nil, newError(ErrCodeNodeNotFound, "layout item not found")
		}
		return nil, wrapError(ErrCodeInternal, "load item", err)
	}

	ancestors, err := s.db.ListAncestors(ctx, nodeID)
	if err != nil {
		return nil, wrapError(ErrCodeInternal, "list ancestors", err)
	}

	chain := make([]Breadcrumb, 0, len(ancestors)+1)
	for _, a := range ancestors {
		chain = append(chain, Breadcrumb{ID: a.ID, Name: a.Name, Type: a.Type})
	}
	chain = append(chain, Breadcrumb{ID: node.ID, Name: node.Name, Type: node.Type})
	return chain, nil
}

func (s *serviceImpl) CreateNode(ctx context.Context, req *CreateNodeRequest) (*types.Node, error) {
	if req == nil || req.Name == "" {
		return nil, newError(ErrCodeValidation, "name is required")
	}
	if _, err := types.ParseItemType(string(req.Type)); err != nil {
		return nil, wrapError(ErrCodeValidation, "invalid item type", err)
	}

	var created *types.Node
	err := s.db.WithTx(ctx, func(tx db.TxStore) error {
		parentType, err := resolveParentType(ctx, tx, req.Parent)
		if err != nil {
			return err
		}
		if err := types.ValidateChild(parentType, req.Type); err != nil {
			return &Error{Code: ErrCodeInvalidHierarchy, Message: err.Error(), Item: NoItem}
		}

		node := &types.Node{
			Name:      req.Name,
			Type:      req.Type,
			ParentID:  req.Parent.idPtr(),
			PositionX: req.PositionX,
			PositionY: req.PositionY,
			Width:     req.Width,
			Height:    req.Height,
		}
		node.ClampGeometry()
		if err := tx.CreateNode(ctx, node); err != nil {
			return wrapError(ErrCodeInternal, "create item", err)
		}
		if err := s.provisionCreate(ctx, tx, node, req.CreatedBy); err != nil {
			return err
		}
		created = node
		return nil
	})
	if err != nil {
		return nil, asServiceError(err)
	}

	mutationsTotal.WithLabelValues("create").Inc()
	s.invalidate(ctx, cache.ChildrenKey(req.Parent.idPtr()))
	return created, nil
}

func (s *serviceImpl) UpdateNode(ctx context.Context, nodeID int64, req *UpdateNodeRequest) (*types.Node, error) {
	if req == nil {
		return nil, newError(ErrCodeValidation, "empty update")
	}
	if req.Name != nil && *req.Name == "" {
		return nil, newError(ErrCodeValidation, "name cannot be empty")
	}

	var updated *types.Node
	err := s.db.WithTx(ctx, func(tx db.TxStore) error {
		node, err := tx.GetNode(ctx, nodeID)
		if err != nil {
			if errors.Is(err, db.ErrNodeNotFound) {
				return newError(ErrCodeNodeNotFound, "layout item not found")
			}
			return wrapError(ErrCodeInternal, "load item", err)
		}

		name := node.Name
		if req.Name != nil {
			name = *req.Name
		}
		posX, posY := node.PositionX, node.PositionY
		if req.PositionX != nil {
			posX = *req.PositionX
		}
		if req.PositionY != nil {
			posY = *req.PositionY
		}
		if posX < 0 {
			posX = 0
		}
		if posY < 0 {
			posY = 0
		}

		updated, err = tx.UpdateNode(ctx, nodeID, name, posX, posY)
		if err != nil {
			return wrapError(ErrCodeInternal, "update item", err)
		}
		if name != node.Name {
			if err := s.provisionRename(ctx, tx, updated); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError(err)
	}

	mutationsTotal.WithLabelValues("update").Inc()
	s.invalidate(ctx, cache.ChildrenKey(updated.ParentID))
	return updated, nil
}

func (s *serviceImpl) DeleteNode(ctx context.Context, nodeID int64) error {
	var parentID *int64
	err := s.db.WithTx(ctx, func(tx db.TxStore) error {
		node, err := tx.GetNode(ctx, nodeID)
		if err != nil {
			if errors.Is(err, db.ErrNodeNotFound) {
				return newError(ErrCodeNodeNotFound, "layout item not found")
			}
			return wrapError(ErrCodeInternal, "load item", err)
		}

		counts, err := tx.CountChildrenByParent(ctx, []int64{nodeID})
		if err != nil {
			return wrapError(ErrCodeInternal, "count children", err)
		}
		if counts[nodeID] > 0 {
			return newError(ErrCodeHasChildren, "cannot delete an item that contains child items")
		}

		if err := s.provisionDelete(ctx, tx, node); err != nil {
			return err
		}
		if err := tx.DeleteNode(ctx, nodeID); err != nil {
			return wrapError(ErrCodeInternal, "delete item", err)
		}
		parentID = node.ParentID
		return nil
	})
	if err != nil {
		return asServiceError(err)
	}

	mutationsTotal.WithLabelValues("delete").Inc()
	s.invalidate(ctx, cache.ChildrenKey(parentID))
	id := nodeID
	s.invalidate(ctx, cache.ChildrenKey(&id))
	return nil
}

// resolveParentType loads the parent's type, or nil for the root level.
func resolveParentType(ctx context.Context, store db.NodeStore, parent ParentRef) (*types.ItemType, error) {
	if parent.Root {
		return nil, nil
	}
	node, err := store.GetNode(ctx, parent.ID)
	if err != nil {
		if errors.Is(err, db.ErrNodeNotFound) {
			return nil, newError(ErrCodeParentNotFound, "parent item not found")
		}
		return nil, wrapError(ErrCodeInternal, "load parent", err)
	}
	return &node.Type, nil
}

// invalidate drops a cache key, logging rather than failing: the write
// already committed and TTL expiry bounds any staleness.
func (s *serviceImpl) invalidate(ctx context.Context, key string) {
	if err := s.cache.Invalidate(ctx, key); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("subtree cache invalidation failed")
	}
}

// asServiceError passes typed domain errors through and wraps anything
// else (usually a transaction commit failure) as internal.
func asServiceError(err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return wrapError(ErrCodeInternal, "transaction failed", err)
}
