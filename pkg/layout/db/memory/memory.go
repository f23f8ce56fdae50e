// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides an in-memory implementation of db.DB for
// testing. Data lives in maps; WithTx clones the whole dataset and swaps
// it in on commit, so transactional rollback behaves like the real store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"

	"github.com/google/uuid"
)

// DB is an in-memory database implementation for testing.
type DB struct {
	mu   sync.RWMutex
	data *dataset
}

// dataset holds all tables. Operations on a dataset never lock; locking
// is the DB's job.
type dataset struct {
	nextNodeID  int64
	nextLabID   int64
	nextAssetID int64

	nodes  map[int64]*types.Node
	labs   map[int64]*types.Lab
	assets map[int64]*types.Asset
	staff  []types.StaffAssignment
}

// New creates a new in-memory database for testing.
func New() *DB {
	return &DB{data: newDataset()}
}

func newDataset() *dataset {
	return &dataset{
		nodes:  make(map[int64]*types.Node),
		labs:   make(map[int64]*types.Lab),
		assets: make(map[int64]*types.Asset),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		nextNodeID:  d.nextNodeID,
		nextLabID:   d.nextLabID,
		nextAssetID: d.nextAssetID,
		nodes:       make(map[int64]*types.Node, len(d.nodes)),
		labs:        make(map[int64]*types.Lab, len(d.labs)),
		assets:      make(map[int64]*types.Asset, len(d.assets)),
		staff:       make([]types.StaffAssignment, len(d.staff)),
	}
	for id, n := range d.nodes {
		c.nodes[id] = copyNode(n)
	}
	for id, l := range d.labs {
		c.labs[id] = copyLab(l)
	}
	for id, a := range d.assets {
		c.assets[id] = copyAsset(a)
	}
	copy(c.staff, d.staff)
	return c
}

func copyNode(n *types.Node) *types.Node {
	c := *n
	if n.ParentID != nil {
		p := *n.ParentID
		c.ParentID = &p
	}
	return &c
}

func copyLab(l *types.Lab) *types.Lab {
	c := *l
	if l.Capacity != nil {
		v := *l.Capacity
		c.Capacity = &v
	}
	if l.Dimension != nil {
		v := *l.Dimension
		c.Dimension = &v
	}
	return &c
}

func copyAsset(a *types.Asset) *types.Asset {
	c := *a
	if a.LabID != nil {
		v := *a.LabID
		c.LabID = &v
	}
	return &c
}

// WithTx executes fn against a clone of the dataset and swaps the clone in
// on success. The database lock is held for the whole transaction, which
// gives the same serialization the real store gets from SERIALIZABLE.
func (d *DB) WithTx(ctx context.Context, fn func(tx db.TxStore) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	clone := d.data.clone()
	if err := fn(&Tx{data: clone}); err != nil {
		return err
	}
	d.data = clone
	return nil
}

// Migrate is a no-op for the in-memory store.
func (d *DB) Migrate(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (d *DB) Close() error {
	return nil
}

// Tx provides transactional access to a cloned dataset.
type Tx struct {
	data *dataset
}

// Ensure interface compliance.
var (
	_ db.DB      = (*DB)(nil)
	_ db.TxStore = (*Tx)(nil)
)

// ============================================================================
// Node Operations
// ============================================================================

func (d *dataset) createNode(node *types.Node) error {
	d.nextNodeID++
	node.ID = d.nextNodeID
	if node.UUID == uuid.Nil {
		node.UUID = uuid.New()
	}
	now := time.Now().UTC()
	node.CreatedAt = now
	node.UpdatedAt = now
	d.nodes[node.ID] = copyNode(node)
	return nil
}

func (d *dataset) getNode(id int64) (*types.Node, error) {
	node, ok := d.nodes[id]
	if !ok {
		return nil, db.ErrNodeNotFound
	}
	return copyNode(node), nil
}

func (d *dataset) getNodeByUUID(id uuid.UUID) (*types.Node, error) {
	for _, node := range d.nodes {
		if node.UUID == id {
			return copyNode(node), nil
		}
	}
	return nil, db.ErrNodeNotFound
}

func (d *dataset) updateNode(id int64, name string, posX, posY int) (*types.Node, error) {
	node, ok := d.nodes[id]
	if !ok {
		return nil, db.ErrNodeNotFound
	}
	node.Name = name
	node.PositionX = posX
	node.PositionY = posY
	node.UpdatedAt = time.Now().UTC()
	return copyNode(node), nil
}

func (d *dataset) deleteNode(id int64) error {
	if _, ok := d.nodes[id]; !ok {
		return db.ErrNodeNotFound
	}
	delete(d.nodes, id)
	return nil
}

func (d *dataset) listChildren(parentID *int64) ([]*types.Node, error) {
	var children []*types.Node
	for _, node := range d.nodes {
		if sameParent(node.ParentID, parentID) {
			children = append(children, copyNode(node))
		}
	}
	sortNodes(children)
	return children, nil
}

func (d *dataset) listAncestors(id int64) ([]*types.Node, error) {
	node, ok := d.nodes[id]
	if !ok {
		return nil, db.ErrNodeNotFound
	}

	var ancestors []*types.Node
	for node.ParentID != nil {
		parent, ok := d.nodes[*node.ParentID]
		if !ok {
			break
		}
		ancestors = append([]*types.Node{copyNode(parent)}, ancestors...)
		node = parent
	}
	return ancestors, nil
}

func (d *dataset) listDescendants(id int64) ([]*types.Node, error) {
	var result []*types.Node
	frontier := []int64{id}
	for len(frontier) > 0 {
		next := frontier[:0:0]
		var level []*types.Node
		for _, parentID := range frontier {
			for _, node := range d.nodes {
				if node.ParentID != nil && *node.ParentID == parentID {
					level = append(level, copyNode(node))
					next = append(next, node.ID)
				}
			}
		}
		sortNodes(level)
		result = append(result, level...)
		frontier = next
	}
	return result, nil
}

func (d *dataset) countChildrenByParent(parentIDs []int64) (map[int64]int64, error) {
	wanted := make(map[int64]bool, len(parentIDs))
	for _, id := range parentIDs {
		wanted[id] = true
	}

	counts := make(map[int64]int64)
	for _, node := range d.nodes {
		if node.ParentID != nil && wanted[*node.ParentID] {
			counts[*node.ParentID]++
		}
	}
	return counts, nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sortNodes(nodes []*types.Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Type != nodes[j].Type {
			return nodes[i].Type < nodes[j].Type
		}
		return nodes[i].Name < nodes[j].Name
	})
}

// ============================================================================
// Lab Operations
// ============================================================================

func (d *dataset) createLab(lab *types.Lab) error {
	d.nextLabID++
	lab.ID = d.nextLabID
	now := time.Now().UTC()
	lab.CreatedAt = now
	lab.UpdatedAt = now
	d.labs[lab.ID] = copyLab(lab)
	return nil
}

func (d *dataset) getLab(id int64) (*types.Lab, error) {
	lab, ok := d.labs[id]
	if !ok {
		return nil, db.ErrLabNotFound
	}
	return copyLab(lab), nil
}

func (d *dataset) getLabByItem(itemID int64) (*types.Lab, error) {
	for _, lab := range d.labs {
		if lab.ItemID == itemID {
			return copyLab(lab), nil
		}
	}
	return nil, db.ErrLabNotFound
}

func (d *dataset) renameLab(itemID int64, name string) error {
	for _, lab := range d.labs {
		if lab.ItemID == itemID {
			lab.Name = name
			lab.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return db.ErrLabNotFound
}

func (d *dataset) updateLabDetails(id int64, capacity *int, dimension *string, quickInfo *string) error {
	lab, ok := d.labs[id]
	if !ok {
		return db.ErrLabNotFound
	}
	if capacity != nil {
		v := *capacity
		lab.Capacity = &v
	}
	if dimension != nil {
		v := *dimension
		lab.Dimension = &v
	}
	if quickInfo != nil {
		lab.QuickInfo = *quickInfo
	}
	lab.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *dataset) deleteLabByItem(itemID int64) error {
	for id, lab := range d.labs {
		if lab.ItemID != itemID {
			continue
		}
		delete(d.labs, id)
		// cascade staff, detach assets
		kept := d.staff[:0]
		for _, a := range d.staff {
			if a.LabID != id {
				kept = append(kept, a)
			}
		}
		d.staff = kept
		for _, asset := range d.assets {
			if asset.LabID != nil && *asset.LabID == id {
				asset.LabID = nil
			}
		}
		return nil
	}
	return db.ErrLabNotFound
}

func (d *dataset) addStaff(labID int64, userID string, role types.StaffRole) error {
	for _, a := range d.staff {
		if a.LabID == labID && a.UserID == userID && a.Role == role {
			return nil
		}
	}
	d.staff = append(d.staff, types.StaffAssignment{LabID: labID, UserID: userID, Role: role})
	return nil
}

func (d *dataset) removeStaff(labID int64, userID string, role types.StaffRole) error {
	kept := d.staff[:0:0]
	for _, a := range d.staff {
		if !(a.LabID == labID && a.UserID == userID && a.Role == role) {
			kept = append(kept, a)
		}
	}
	d.staff = kept
	return nil
}

func (d *dataset) countStaffLabs(userID string, role types.StaffRole) (int64, error) {
	var count int64
	for _, a := range d.staff {
		if a.UserID == userID && a.Role == role {
			count++
		}
	}
	return count, nil
}

func (d *dataset) listStaff(labID int64) ([]*types.StaffAssignment, error) {
	var staff []*types.StaffAssignment
	for _, a := range d.staff {
		if a.LabID == labID {
			c := a
			staff = append(staff, &c)
		}
	}
	sort.Slice(staff, func(i, j int) bool {
		if staff[i].Role != staff[j].Role {
			return staff[i].Role < staff[j].Role
		}
		return staff[i].UserID < staff[j].UserID
	})
	return staff, nil
}

// ============================================================================
// Asset Operations
// ============================================================================

func (d *dataset) createAsset(asset *types.Asset) error {
	d.nextAssetID++
	asset.ID = d.nextAssetID
	if asset.Status == "" {
		asset.Status = types.AssetActive
	}
	asset.UpdatedAt = time.Now().UTC()
	d.assets[asset.ID] = copyAsset(asset)
	return nil
}

func (d *dataset) getAssetByItem(itemID int64) (*types.Asset, error) {
	for _, asset := range d.assets {
		if asset.ItemID == itemID {
			return copyAsset(asset), nil
		}
	}
	return nil, db.ErrAssetNotFound
}

func (d *dataset) renameAsset(itemID int64, hostName string) error {
	for _, asset := range d.assets {
		if asset.ItemID == itemID {
			asset.HostName = hostName
			asset.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return db.ErrAssetNotFound
}

func (d *dataset) updateAssetStatus(itemID int64, status types.AssetStatus, updatedBy string) error {
	for _, asset := range d.assets {
		if asset.ItemID == itemID {
			asset.Status = status
			asset.UpdatedAt = time.Now().UTC()
			asset.UpdatedBy = updatedBy
			return nil
		}
	}
	return db.ErrAssetNotFound
}

func (d *dataset) deleteAssetByItem(itemID int64) error {
	for id, asset := range d.assets {
		if asset.ItemID == itemID {
			delete(d.assets, id)
			return nil
		}
	}
	return db.ErrAssetNotFound
}

func (d *dataset) listAssetsByLab(labID int64) ([]*types.Asset, error) {
	var assets []*types.Asset
	for _, asset := range d.assets {
		if asset.LabID != nil && *asset.LabID == labID {
			assets = append(assets, copyAsset(asset))
		}
	}
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].HostName < assets[j].HostName
	})
	return assets, nil
}
