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
)

const assetColumns = `id, item_id, lab_id, host_name, status, updated_at, updated_by`

// ============================================================================
// Asset Operations - Store
// ============================================================================

func (s *Store) CreateAsset(ctx context.Context, asset *types.Asset) error {
	return createAsset(ctx, s, asset)
}

func (s *Store) GetAssetByItem(ctx context.Context, itemID int64) (*types.Asset, error) {
	return getAssetByItem(ctx, s, itemID)
}

func (s *Store) RenameAsset(ctx context.Context, itemID int64, hostName string) error {
	return renameAsset(ctx, s, itemID, hostName)
}

func (s *Store) UpdateAssetStatus(ctx context.Context, itemID int64, status types.AssetStatus, updatedBy string) error {
	return updateAssetStatus(ctx, s, itemID, status, updatedBy)
}

func (s *Store) DeleteAssetByItem(ctx context.Context, itemID int64) error {
	return deleteAssetByItem(ctx, s, itemID)
}

func (s *Store) ListAssetsByLab(ctx context.Context, labID int64) ([]*types.Asset, error) {
	return listAssetsByLab(ctx, s, labID)
}

// ============================================================================
// Asset Operations - TxStore
// ============================================================================

func (t *TxStore) CreateAsset(ctx context.Context, asset *types.Asset) error {
	return createAsset(ctx, t, asset)
}

func (t *TxStore) GetAssetByItem(ctx context.Context, itemID int64) (*types.Asset, error) {
	return getAssetByItem(ctx, t, itemID)
}

func (t *TxStore) RenameAsset(ctx context.Context, itemID int64, hostName string) error {
	return renameAsset(ctx, t, itemID, hostName)
}

func (t *TxStore) UpdateAssetStatus(ctx context.Context, itemID int64, status types.AssetStatus, updatedBy string) error {
	return updateAssetStatus(ctx, t, itemID, status, updatedBy)
}

func (t *TxStore) DeleteAssetByItem(ctx context.Context, itemID int64) error {
	return deleteAssetByItem(ctx, t, itemID)
}

func (t *TxStore) ListAssetsByLab(ctx context.Context, labID int64) ([]*types.Asset, error) {
	return listAssetsByLab(ctx, t, labID)
}

// ============================================================================
// Shared Implementations
// ============================================================================

func createAsset(ctx context.Context, q querier, asset *types.Asset) error {
	if asset.Status == "" {
		asset.Status = types.AssetActive
	}
	asset.UpdatedAt = time.Now().UTC()

	err := q.queryRow(ctx, `
		INSERT INTO assets (item_id, lab_id, host_name, status, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		asset.ItemID,
		asset.LabID,
		asset.HostName,
		string(asset.Status),
		asset.UpdatedAt,
		asset.UpdatedBy,
	).Scan(&asset.ID)
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

func getAssetByItem(ctx context.Context, q querier, itemID int64) (*types.Asset, error) {
	row := q.queryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE item_id = $1`, itemID)
	return scanAsset(row)
}

func renameAsset(ctx context.Context, q querier, itemID int64, hostName string) error {
	result, err := q.exec(ctx, `
		UPDATE assets SET host_name = $2, updated_at = $3 WHERE item_id = $1
	`, itemID, hostName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("rename asset: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return db.ErrAssetNotFound
	}
	return nil
}

func updateAssetStatus(ctx context.Context, q querier, itemID int64, status types.AssetStatus, updatedBy string) error {
	result, err := q.exec(ctx, `
		UPDATE assets SET status = $2, updated_at = $3, updated_by = $4 WHERE item_id = $1
	`, itemID, string(status), time.Now().UTC(), updatedBy)
	if err != nil {
		return fmt.Errorf("update asset status: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return db.ErrAssetNotFound
	}
	return nil
}

func deleteAssetByItem(ctx context.Context, q querier, itemID int64) error {
	result, err := q.exec(ctx, `DELETE FROM assets WHERE item_id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return db.ErrAssetNotFound
	}
	return nil
}

func listAssetsByLab(ctx context.Context, q querier, labID int64) ([]*types.Asset, error) {
	rows, err := q.query(ctx, `
		SELECT `+assetColumns+` FROM assets WHERE lab_id = $1 ORDER BY host_name
	`, labID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []*types.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func scanAsset(s scanner) (*types.Asset, error) {
	var asset types.Asset
	var labID sql.NullInt64
	var status string

	err := s.Scan(
		&asset.ID,
		&asset.ItemID,
		&labID,
		&asset.HostName,
		&status,
		&asset.UpdatedAt,
		&asset.UpdatedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan asset: %w", err)
	}

	if labID.Valid {
		asset.LabID = &labID.Int64
	}
	asset.Status = types.AssetStatus(status)
	return &asset, nil
}
