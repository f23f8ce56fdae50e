// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/cache"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db"
	"github.com/Ai-Chetan/NexusGrid/pkg/logger"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"
)

// Reconcile replaces the child set under parent with the desired list in
// one serializable transaction. Entries referencing live children are
// updated in place; entries referencing ids that no longer exist are
// re-created under fresh ids; entries without an id are created; live
// children absent from the list are deleted together with their whole
// subtree and linked entities. Either every change lands or none do.
func (s *serviceImpl) Reconcile(ctx context.Context, parent ParentRef, desired []DesiredChild, actor string) (*ReconcileResult, error) {
	start := time.Now()

	result := &ReconcileResult{}
	var staleKeys []string

	err := s.db.WithTx(ctx, func(tx db.TxStore) error {
		result = &ReconcileResult{}
		staleKeys = staleKeys[:0]

		parentType, err := resolveParentType(ctx, tx, parent)
		if err != nil {
			return err
		}

		// Validate every entry before the first write so a malformed
		// tail cannot leave a half-applied batch behind a rollback.
		for i, d := range desired {
			if d.Name == "" {
				return itemError(ErrCodeValidation, i, "name is required")
			}
			if _, err := types.ParseItemType(string(d.Type)); err != nil {
				return itemError(ErrCodeValidation, i, err.Error())
			}
			if err := types.ValidateChild(parentType, d.Type); err != nil {
				return itemError(ErrCodeInvalidHierarchy, i, err.Error())
			}
		}

		existing, err := tx.ListChildren(ctx, parent.idPtr())
		if err != nil {
			return wrapError(ErrCodeInternal, "list children", err)
		}
		live := make(map[int64]*types.Node, len(existing))
		for _, n := range existing {
			live[n.ID] = n
		}

		kept := make(map[int64]bool, len(desired))
		for i, d := range desired {
			switch {
			case d.ID != nil && live[*d.ID] != nil:
				if err := s.reconcileUpdate(ctx, tx, live[*d.ID], d, i); err != nil {
					return err
				}
				kept[*d.ID] = true
				result.Updated++

			case d.ID != nil:
				// Stale reference: the node vanished since the client
				// loaded its copy. Recover it as a new node.
				node, err := s.reconcileCreate(ctx, tx, parent, d, actor, i)
				if err != nil {
					return err
				}
				result.Recovered++
				result.NewIDs = append(result.NewIDs, IDMapping{OldID: *d.ID, NewID: node.ID})

			default:
				node, err := s.reconcileCreate(ctx, tx, parent, d, actor, i)
				if err != nil {
					return err
				}
				result.Created++
				result.NewIDs = append(result.NewIDs, IDMapping{TempID: d.TempID, NewID: node.ID})
			}
		}

		for _, n := range existing {
			if kept[n.ID] {
				continue
			}
			removed, err := s.reconcileDelete(ctx, tx, n)
			if err != nil {
				return err
			}
			result.Deleted += removed
			id := n.ID
			staleKeys = append(staleKeys, cache.ChildrenKey(&id))
		}
		return nil
	})
	if err != nil {
		reconcileTotal.WithLabelValues("error").Inc()
		return nil, asReconcileError(err)
	}

	// One invalidation for the reconciled parent, after commit. Keys of
	// deleted subtree roots are dropped too so they cannot serve ghosts
	// until TTL expiry.
	s.invalidate(ctx, cache.ChildrenKey(parent.idPtr()))
	for _, key := range staleKeys {
		s.invalidate(ctx, key)
	}

	reconcileTotal.WithLabelValues("ok").Inc()
	reconcileDuration.Observe(time.Since(start).Seconds())
	logger.Ctx(ctx).Info().
		Str("parent", parent.String()).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("recovered", result.Recovered).
		Int("deleted", result.Deleted).
		Msg("layout reconciled")
	return result, nil
}

// reconcileUpdate applies a desired entry onto its live node, with
// rename propagation to the linked entity.
func (s *serviceImpl) reconcileUpdate(ctx context.Context, tx db.TxStore, node *types.Node, d DesiredChild, item int) error {
	if d.Type != node.Type {
		return itemError(ErrCodeValidation, item,
			fmt.Sprintf("item type is immutable: have %s, got %s", node.Type, d.Type))
	}
	posX, posY := d.PositionX, d.PositionY
	if posX < 0 {
		posX = 0
	}
	if posY < 0 {
		posY = 0
	}
	updated, err := tx.UpdateNode(ctx, node.ID, d.Name, posX, posY)
	if err != nil {
		return &Error{Code: ErrCodeInternal, Message: "update item", Item: item, Err: err}
	}
	if d.Name != node.Name {
		if err := s.provisionRename(ctx, tx, updated); err != nil {
			return err
		}
	}
	return nil
}

// reconcileCreate inserts a desired entry as a new node and provisions
// its linked entity. Hierarchy was validated up front.
func (s *serviceImpl) reconcileCreate(ctx context.Context, tx db.TxStore, parent ParentRef, d DesiredChild, actor string, item int) (*types.Node, error) {
	node := &types.Node{
		Name:      d.Name,
		Type:      d.Type,
		ParentID:  parent.idPtr(),
		PositionX: d.PositionX,
		PositionY: d.PositionY,
		Width:     d.Width,
		Height:    d.Height,
	}
	node.ClampGeometry()
	if err := tx.CreateNode(ctx, node); err != nil {
		return nil, &Error{Code: ErrCodeInternal, Message: "create item", Item: item, Err: err}
	}
	if err := s.provisionCreate(ctx, tx, node, actor); err != nil {
		return nil, err
	}
	return node, nil
}

// reconcileDelete removes a node and its entire subtree, deepest nodes
// first, clearing linked entities along the way. Returns the number of
// nodes removed.
func (s *serviceImpl) reconcileDelete(ctx context.Context, tx db.TxStore, node *types.Node) (int, error) {
	descendants, err := tx.ListDescendants(ctx, node.ID)
	if err != nil {
		return 0, wrapError(ErrCodeInternal, "list descendants", err)
	}
	for i := len(descendants) - 1; i >= 0; i-- {
		d := descendants[i]
		if err := s.provisionDelete(ctx, tx, d); err != nil {
			return 0, err
		}
		if err := tx.DeleteNode(ctx, d.ID); err != nil {
			return 0, wrapError(ErrCodeInternal, "delete descendant", err)
		}
	}
	if err := s.provisionDelete(ctx, tx, node); err != nil {
		return 0, err
	}
	if err := tx.DeleteNode(ctx, node.ID); err != nil {
		return 0, wrapError(ErrCodeInternal, "delete item", err)
	}
	return len(descendants) + 1, nil
}

// asReconcileError keeps typed domain errors and folds transaction-level
// failures (serialization aborts, commit errors) into a reconcile error
// the caller can retry on.
func asReconcileError(err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return wrapError(ErrCodeReconcileFailed, "layout save aborted", err)
}
