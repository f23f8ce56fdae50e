// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"

	"github.com/Ai-Chetan/NexusGrid/pkg/types"

	"github.com/google/uuid"
)

// DB-level operations take the lock and delegate to the dataset; Tx-level
// operations run lock-free against the transaction's clone (the DB lock is
// held for the duration of WithTx).

// ============================================================================
// NodeStore
// ============================================================================

func (d *DB) CreateNode(ctx context.Context, node *types.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.createNode(node)
}

func (d *DB) GetNode(ctx context.Context, id int64) (*types.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.getNode(id)
}

func (d *DB) GetNodeByUUID(ctx context.Context, id uuid.UUID) (*types.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.getNodeByUUID(id)
}

func (d *DB) UpdateNode(ctx context.Context, id int64, name string, posX, posY int) (*types.Node, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.updateNode(id, name, posX, posY)
}

func (d *DB) DeleteNode(ctx context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.deleteNode(id)
}

func (d *DB) ListChildren(ctx context.Context, parentID *int64) ([]*types.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.listChildren(parentID)
}

func (d *DB) ListAncestors(ctx context.Context, id int64) ([]*types.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.listAncestors(id)
}

func (d *DB) ListDescendants(ctx context.Context, id int64) ([]*types.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.listDescendants(id)
}

func (d *DB) CountChildrenByParent(ctx context.Context, parentIDs []int64) (map[int64]int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.countChildrenByParent(parentIDs)
}

func (t *Tx) CreateNode(ctx context.Context, node *types.Node) error {
	return t.data.createNode(node)
}

func (t *Tx) GetNode(ctx context.Context, id int64) (*types.Node, error) {
	return t.data.getNode(id)
}

func (t *Tx) GetNodeByUUID(ctx context.Context, id uuid.UUID) (*types.Node, error) {
	return t.data.getNodeByUUID(id)
}

func (t *Tx) UpdateNode(ctx context.Context, id int64, name string, posX, posY int) (*types.Node, error) {
	return t.data.updateNode(id, name, posX, posY)
}

func (t *Tx) DeleteNode(ctx context.Context, id int64) error {
	return t.data.deleteNode(id)
}

func (t *Tx) ListChildren(ctx context.Context, parentID *int64) ([]*types.Node, error) {
	return t.data.listChildren(parentID)
}

func (t *Tx) ListAncestors(ctx context.Context, id int64) ([]*types.Node, error) {
	return t.data.listAncestors(id)
}

func (t *Tx) ListDescendants(ctx context.Context, id int64) ([]*types.Node, error) {
	return t.data.listDescendants(id)
}

func (t *Tx) CountChildrenByParent(ctx context.Context, parentIDs []int64) (map[int64]int64, error) {
	return t.data.countChildrenByParent(parentIDs)
}

// ============================================================================
// LabStore
// ============================================================================

func (d *DB) CreateLab(ctx context.Context, lab *types.Lab) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.createLab(lab)
}

func (d *DB) GetLab(ctx context.Context, id int64) (*types.Lab, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.getLab(id)
}

func (d *DB) GetLabByItem(ctx context.Context, itemID int64) (*types.Lab, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.getLabByItem(itemID)
}

func (d *DB) RenameLab(ctx context.Context, itemID int64, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.renameLab(itemID, name)
}

func (d *DB) UpdateLabDetails(ctx context.Context, id int64, capacity *int, dimension *string, quickInfo *string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.updateLabDetails(id, capacity, dimension, quickInfo)
}

func (d *DB) DeleteLabByItem(ctx context.Context, itemID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.deleteLabByItem(itemID)
}

func (d *DB) AddStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.addStaff(labID, userID, role)
}

func (d *DB) RemoveStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.removeStaff(labID, userID, role)
}

func (d *DB) CountStaffLabs(ctx context.Context, userID string, role types.StaffRole) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.countStaffLabs(userID, role)
}

func (d *DB) ListStaff(ctx context.Context, labID int64) ([]*types.StaffAssignment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.listStaff(labID)
}

func (t *Tx) CreateLab(ctx context.Context, lab *types.Lab) error {
	return t.data.createLab(lab)
}

func (t *Tx) GetLab(ctx context.Context, id int64) (*types.Lab, error) {
	return t.data.getLab(id)
}

func (t *Tx) GetLabByItem(ctx context.Context, itemID int64) (*types.Lab, error) {
	return t.data.getLabByItem(itemID)
}

func (t *Tx) RenameLab(ctx context.Context, itemID int64, name string) error {
	return t.data.renameLab(itemID, name)
}

func (t *Tx) UpdateLabDetails(ctx context.Context, id int64, capacity *int, dimension *string, quickInfo *string) error {
	return t.data.updateLabDetails(id, capacity, dimension, quickInfo)
}

func (t *Tx) DeleteLabByItem(ctx context.Context, itemID int64) error {
	return t.data.deleteLabByItem(itemID)
}

func (t *Tx) AddStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error {
	return t.data.addStaff(labID, userID, role)
}

func (t *Tx) RemoveStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error {
	return t.data.removeStaff(labID, userID, role)
}

func (t *Tx) CountStaffLabs(ctx context.Context, userID string, role types.StaffRole) (int64, error) {
	return t.data.countStaffLabs(userID, role)
}

func (t *Tx) ListStaff(ctx context.Context, labID int64) ([]*types.StaffAssignment, error) {
	return t.data.listStaff(labID)
}

// ============================================================================
// AssetStore
// ============================================================================

func (d *DB) CreateAsset(ctx context.Context, asset *types.Asset) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.createAsset(asset)
}

func (d *DB) GetAssetByItem(ctx context.Context, itemID int64) (*types.Asset, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.getAssetByItem(itemID)
}

func (d *DB) RenameAsset(ctx context.Context, itemID int64, hostName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.renameAsset(itemID, hostName)
}

func (d *DB) UpdateAssetStatus(ctx context.Context, itemID int64, status types.AssetStatus, updatedBy string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.updateAssetStatus(itemID, status, updatedBy)
}

func (d *DB) DeleteAssetByItem(ctx context.Context, itemID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.deleteAssetByItem(itemID)
}

func (d *DB) ListAssetsByLab(ctx context.Context, labID int64) ([]*types.Asset, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.listAssetsByLab(labID)
}

func (t *Tx) CreateAsset(ctx context.Context, asset *types.Asset) error {
	return t.data.createAsset(asset)
}

func (t *Tx) GetAssetByItem(ctx context.Context, itemID int64) (*types.Asset, error) {
	return t.data.getAssetByItem(itemID)
}

func (t *Tx) RenameAsset(ctx context.Context, itemID int64, hostName string) error {
	return t.data.renameAsset(itemID, hostName)
}

func (t *Tx) UpdateAssetStatus(ctx context.Context, itemID int64, status types.AssetStatus, updatedBy string) error {
	return t.data.updateAssetStatus(itemID, status, updatedBy)
}

func (t *Tx) DeleteAssetByItem(ctx context.Context, itemID int64) error {
	return t.data.deleteAssetByItem(itemID)
}

func (t *Tx) ListAssetsByLab(ctx context.Context, labID int64) ([]*types.Asset, error) {
	return t.data.listAssetsByLab(labID)
}
