// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"

	"github.com/google/uuid"
)

const nodeColumns = `id, uuid, name, item_type, parent_id, position_x, position_y, width, height, created_at, updated_at`

// ============================================================================
// Node Operations - Store
// ============================================================================

func (s *Store) CreateNode(ctx context.Context, node *types.Node) error {
	return createNode(ctx, s, node)
}

func (s *Store) GetNode(ctx context.Context, id int64) (*types.Node, error) {
	return getNode(ctx, s, id)
}

func (s *Store) GetNodeByUUID(ctx context.Context, id uuid.UUID) (*types.Node, error) {
	return getNodeByUUID(ctx, s, id)
}

func (s *Store) UpdateNode(ctx context.Context, id int64, name string, posX, posY int) (*types.Node, error) {
	return updateNode(ctx, s, id, name, posX, posY)
}

func (s *Store) DeleteNode(ctx context.Context, id int64) error {
	return deleteNode(ctx, s, id)
}

func (s *Store) ListChildren(ctx context.Context, parentID *int64) ([]*types.Node, error) {
	return listChildren(ctx, s, parentID)
}

func (s *Store) ListAncestors(ctx context.Context, id int64) ([]*types.Node, error) {
	return listAncestors(ctx, s, id)
}

func (s *Store) ListDescendants(ctx context.Context, id int64) ([]*types.Node, error) {
	return listDescendants(ctx, s, id)
}

func (s *Store) CountChildrenByParent(ctx context.Context, parentIDs []int64) (map[int64]int64, error) {
	return countChildrenByParent(ctx, s, parentIDs)
}

// ============================================================================
// Node Operations - TxStore
// ============================================================================

func (t *TxStore) CreateNode(ctx context.Context, node *types.Node) error {
	return createNode(ctx, t, node)
}

func (t *TxStore) GetNode(ctx context.Context, id int64) (*types.Node, error) {
	return getNode(ctx, t, id)
}

func (t *TxStore) GetNodeByUUID(ctx context.Context, id uuid.UUID) (*types.Node, error) {
	return getNodeByUUID(ctx, t, id)
}

func (t *TxStore) UpdateNode(ctx context.Context, id int64, name string, posX, posY int) (*types.Node, error) {
	return updateNode(ctx, t, id, name, posX, posY)
}

func (t *TxStore) DeleteNode(ctx context.Context, id int64) error {
	return deleteNode(ctx, t, id)
}

func (t *TxStore) ListChildren(ctx context.Context, parentID *int64) ([]*types.Node, error) {
	return listChildren(ctx, t, parentID)
}

func (t *TxStore) ListAncestors(ctx context.Context, id int64) ([]*types.Node, error) {
	return listAncestors(ctx, t, id)
}

func (t *TxStore) ListDescendants(ctx context.Context, id int64) ([]*types.Node, error) {
	return listDescendants(ctx, t, id)
}

func (t *TxStore) CountChildrenByParent(ctx context.Context, parentIDs []int64) (map[int64]int64, error) {
	return countChildrenByParent(ctx, t, parentIDs)
}

// ============================================================================
// Shared Implementations
// ============================================================================

func createNode(ctx context.Context, q querier, node *types.Node) error {
	if node.UUID == uuid.Nil {
		node.UUID = uuid.New()
	}
	now := time.Now().UTC()
	node.CreatedAt = now
	node.UpdatedAt = now

	err := q.queryRow(ctx, `
		INSERT INTO layout_items (uuid, name, item_type, parent_id, position_x, position_y, width, height, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		node.UUID.String(),
		node.Name,
		string(node.Type),
		node.ParentID,
		node.PositionX,
		node.PositionY,
		node.Width,
		node.Height,
		node.CreatedAt,
		node.UpdatedAt,
	).Scan(&node.ID)
	if err != nil {
		return fmt.Errorf("create layout item: %w", err)
	}
	return nil
}

func getNode(ctx context.Context, q querier, id int64) (*types.Node, error) {
	row := q.queryRow(ctx, `SELECT `+nodeColumns+` FROM layout_items WHERE id = $1`, id)
	return scanNode(row)
}

func getNodeByUUID(ctx context.Context, q querier, id uuid.UUID) (*types.Node, error) {
	row := q.queryRow(ctx, `SELECT `+nodeColumns+` FROM layout_items WHERE uuid = $1`, id.String())
	return scanNode(row)
}

func updateNode(ctx context.Context, q querier, id int64, name string, posX, posY int) (*types.Node, error) {
	row := q.queryRow(ctx, `
		UPDATE layout_items
		SET name = $2, position_x = $3, position_y = $4, updated_at = $5
		WHERE id = $1
		RETURNING `+nodeColumns,
		id, name, posX, posY, time.Now().UTC(),
	)
	return scanNode(row)
}

func deleteNode(ctx context.Context, q querier, id int64) error {
	result, err := q.exec(ctx, `DELETE FROM layout_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete layout item: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return db.ErrNodeNotFound
	}
	return nil
}

func listChildren(ctx context.Context, q querier, parentID *int64) ([]*types.Node, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID == nil {
		rows, err = q.query(ctx, `
			SELECT `+nodeColumns+` FROM layout_items
			WHERE parent_id IS NULL
			ORDER BY item_type, name
		`)
	} else {
		rows, err = q.query(ctx, `
			SELECT `+nodeColumns+` FROM layout_items
			WHERE parent_id = $1
			ORDER BY item_type, name
		`, *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

func listAncestors(ctx context.Context, q querier, id int64) ([]*types.Node, error) {
	// Distinguish "node missing" from "node is a root".
	if _, err := getNode(ctx, q, id); err != nil {
		return nil, err
	}

	// Recursive walk up the parent chain; ORDER BY depth DESC yields the
	// chain root-first.
	rows, err := q.query(ctx, `
		WITH RECURSIVE chain AS (
			SELECT i.*, 0 AS depth
			FROM layout_items i
			WHERE i.id = (SELECT parent_id FROM layout_items WHERE id = $1)
			UNION ALL
			SELECT p.*, c.depth + 1
			FROM layout_items p
			JOIN chain c ON p.id = c.parent_id
		)
		SELECT `+nodeColumns+` FROM chain ORDER BY depth DESC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list ancestors: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

func listDescendants(ctx context.Context, q querier, id int64) ([]*types.Node, error) {
	rows, err := q.query(ctx, `
		WITH RECURSIVE subtree AS (
			SELECT i.*, 1 AS depth
			FROM layout_items i
			WHERE i.parent_id = $1
			UNION ALL
			SELECT c.*, s.depth + 1
			FROM layout_items c
			JOIN subtree s ON c.parent_id = s.id
		)
		SELECT `+nodeColumns+` FROM subtree ORDER BY depth, item_type, name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list descendants: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

func countChildrenByParent(ctx context.Context, q querier, parentIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	// One grouped aggregate instead of a count query per child.
	rows, err := q.query(ctx, `
		SELECT parent_id, COUNT(*)
		FROM layout_items
		WHERE parent_id = ANY($1)
		GROUP BY parent_id
	`, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("count children: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentID, count int64
		if err := rows.Scan(&parentID, &count); err != nil {
			return nil, fmt.Errorf("scan child count: %w", err)
		}
		counts[parentID] = count
	}
	return counts, rows.Err()
}

func scanNode(s scanner) (*types.Node, error) {
	var node types.Node
	var uuidStr string
	var itemType string
	var parentID sql.NullInt64

	err := s.Scan(
		&node.ID,
		&uuidStr,
		&node.Name,
		&itemType,
		&parentID,
		&node.PositionX,
		&node.PositionY,
		&node.Width,
		&node.Height,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrNodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan layout item: %w", err)
	}

	node.UUID, err = uuid.Parse(uuidStr)
	if err != nil {
		return nil, fmt.Errorf("parse item uuid: %w", err)
	}
	node.Type = types.ItemType(itemType)
	if parentID.Valid {
		node.ParentID = &parentID.Int64
	}
	return &node, nil
}

func scanNodes(rows *sql.Rows) ([]*types.Node, error) {
	var nodes []*types.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}
