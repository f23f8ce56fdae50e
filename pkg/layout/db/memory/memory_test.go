// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, store db.NodeStore, name string, typ types.ItemType, parentID *int64) *types.Node {
	t.Helper()
	node := &types.Node{Name: name, Type: typ, ParentID: parentID, Width: 1, Height: 1}
	require.NoError(t, store.CreateNode(context.Background(), node))
	require.NotZero(t, node.ID)
	require.NotEmpty(t, node.UUID)
	return node
}

func TestNodeCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := New()

	b := mustCreate(t, d, "B1", types.ItemBuilding, nil)

	got, err := d.GetNode(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "B1", got.Name)
	assert.Nil(t, got.ParentID)

	byUUID, err := d.GetNodeByUUID(ctx, b.UUID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, byUUID.ID)

	updated, err := d.UpdateNode(ctx, b.ID, "Main Building", 4, 2)
	require.NoError(t, err)
	assert.Equal(t, "Main Building", updated.Name)
	assert.Equal(t, 4, updated.PositionX)

	require.NoError(t, d.DeleteNode(ctx, b.ID))
	_, err = d.GetNode(ctx, b.ID)
	assert.ErrorIs(t, err, db.ErrNodeNotFound)

	_, err = d.UpdateNode(ctx, 999, "x", 0, 0)
	assert.ErrorIs(t, err, db.ErrNodeNotFound)
}

func TestListChildrenOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := New()

	b := mustCreate(t, d, "B1", types.ItemBuilding, nil)
	f := mustCreate(t, d, "F1", types.ItemFloor, &b.ID)
	r := mustCreate(t, d, "R1", types.ItemRoom, &f.ID)

	// Ordered by item type then name within the same parent.
	mustCreate(t, d, "pc-2", types.ItemComputer, &r.ID)
	mustCreate(t, d, "srv-1", types.ItemServer, &r.ID)
	mustCreate(t, d, "pc-1", types.ItemComputer, &r.ID)

	children, err := d.ListChildren(ctx, &r.ID)
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, "pc-1", children[0].Name)
	assert.Equal(t, "pc-2", children[1].Name)
	assert.Equal(t, "srv-1", children[2].Name)

	roots, err := d.ListChildren(ctx, nil)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, b.ID, roots[0].ID)
}

func TestAncestorsAndDescendants(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := New()

	b := mustCreate(t, d, "B1", types.ItemBuilding, nil)
	f := mustCreate(t, d, "F1", types.ItemFloor, &b.ID)
	r := mustCreate(t, d, "R1", types.ItemRoom, &f.ID)
	c := mustCreate(t, d, "pc-1", types.ItemComputer, &r.ID)

	ancestors, err := d.ListAncestors(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ancestors, 3)
	assert.Equal(t, []int64{b.ID, f.ID, r.ID}, []int64{ancestors[0].ID, ancestors[1].ID, ancestors[2].ID})

	ancestors, err = d.ListAncestors(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, ancestors)

	_, err = d.ListAncestors(ctx, 999)
	assert.ErrorIs(t, err, db.ErrNodeNotFound)

	descendants, err := d.ListDescendants(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, descendants, 3)
	// Parents come before their children.
	assert.Equal(t, f.ID, descendants[0].ID)
	assert.Equal(t, r.ID, descendants[1].ID)
	assert.Equal(t, c.ID, descendants[2].ID)
}

func TestCountChildrenByParent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := New()

	b1 := mustCreate(t, d, "B1", types.ItemBuilding, nil)
	b2 := mustCreate(t, d, "B2", types.ItemBuilding, nil)
	mustCreate(t, d, "F1", types.ItemFloor, &b1.ID)
	mustCreate(t, d, "F2", types.ItemFloor, &b1.ID)

	counts, err := d.CountChildrenByParent(ctx, []int64{b1.ID, b2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[b1.ID])
	// Childless parents are absent, not zero.
	_, ok := counts[b2.ID]
	assert.False(t, ok)
}

func TestWithTxCommitAndRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := New()

	boom := errors.New("boom")
	err := d.WithTx(ctx, func(tx db.TxStore) error {
		node := &types.Node{Name: "B1", Type: types.ItemBuilding}
		require.NoError(t, tx.CreateNode(ctx, node))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	roots, err := d.ListChildren(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, roots, "rolled-back insert must not be visible")

	err = d.WithTx(ctx, func(tx db.TxStore) error {
		return tx.CreateNode(ctx, &types.Node{Name: "B1", Type: types.ItemBuilding})
	})
	require.NoError(t, err)

	roots, err = d.ListChildren(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, roots, 1)
}

func TestLabLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := New()

	room := mustCreate(t, d, "R1", types.ItemRoom, nil)
	lab := &types.Lab{ItemID: room.ID, Name: "R1", Location: "B1 > F1"}
	require.NoError(t, d.CreateLab(ctx, lab))
	require.NotZero(t, lab.ID)

	got, err := d.GetLabByItem(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "B1 > F1", got.Location)

	require.NoError(t, d.RenameLab(ctx, room.ID, "Physics Lab"))
	got, err = d.GetLab(ctx, lab.ID)
	require.NoError(t, err)
	assert.Equal(t, "Physics Lab", got.Name)

	capacity := 30
	require.NoError(t, d.UpdateLabDetails(ctx, lab.ID, &capacity, nil, nil))
	got, err = d.GetLab(ctx, lab.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Capacity)
	assert.Equal(t, 30, *got.Capacity)

	// Staff and linked assets hang off the lab.
	require.NoError(t, d.AddStaff(ctx, lab.ID, "alice", types.RoleInstructor))
	asset := &types.Asset{ItemID: 99, LabID: &lab.ID, HostName: "pc-1"}
	require.NoError(t, d.CreateAsset(ctx, asset))

	require.NoError(t, d.DeleteLabByItem(ctx, room.ID))
	_, err = d.GetLabByItem(ctx, room.ID)
	assert.ErrorIs(t, err, db.ErrLabNotFound)

	staff, err := d.ListStaff(ctx, lab.ID)
	require.NoError(t, err)
	assert.Empty(t, staff, "staff assignments cascade with the lab")

	orphan, err := d.GetAssetByItem(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, orphan.LabID, "assets detach instead of cascading")
}

func TestStaffAssignments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := New()

	require.NoError(t, d.AddStaff(ctx, 1, "alice", types.RoleInstructor))
	require.NoError(t, d.AddStaff(ctx, 1, "alice", types.RoleInstructor)) // idempotent
	require.NoError(t, d.AddStaff(ctx, 2, "alice", types.RoleInstructor))
	require.NoError(t, d.AddStaff(ctx, 1, "alice", types.RoleAssistant))

	count, err := d.CountStaffLabs(ctx, "alice", types.RoleInstructor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, d.RemoveStaff(ctx, 1, "alice", types.RoleInstructor))
	count, err = d.CountStaffLabs(ctx, "alice", types.RoleInstructor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAssetLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := New()

	asset := &types.Asset{ItemID: 7, HostName: "pc-1"}
	require.NoError(t, d.CreateAsset(ctx, asset))
	assert.Equal(t, types.AssetActive, asset.Status, "status defaults to active")

	require.NoError(t, d.RenameAsset(ctx, 7, "pc-renamed"))
	require.NoError(t, d.UpdateAssetStatus(ctx, 7, types.AssetNonFunctional, "bob"))

	got, err := d.GetAssetByItem(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "pc-renamed", got.HostName)
	assert.Equal(t, types.AssetNonFunctional, got.Status)
	assert.Equal(t, "bob", got.UpdatedBy)

	require.NoError(t, d.DeleteAssetByItem(ctx, 7))
	_, err = d.GetAssetByItem(ctx, 7)
	assert.ErrorIs(t, err, db.ErrAssetNotFound)
}
