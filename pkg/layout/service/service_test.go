// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/cache"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db/memory"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   Service
	db    *memory.DB
	cache *cache.MemoryCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d := memory.New()
	c := cache.NewMemory(time.Minute)
	t.Cleanup(func() { c.Close() })

	svc, err := New(d, c, types.DefaultRoleLimits())
	require.NoError(t, err)
	return &fixture{svc: svc, db: d, cache: c}
}

func (f *fixture) mustCreate(t *testing.T, parent ParentRef, name string, typ types.ItemType) *types.Node {
	t.Helper()
	node, err := f.svc.CreateNode(context.Background(), &CreateNodeRequest{
		Parent: parent, Name: name, Type: typ, Width: 1, Height: 1, CreatedBy: "tester",
	})
	require.NoError(t, err)
	return node
}

// buildRoom creates building > floor > room and returns the three nodes.
func (f *fixture) buildRoom(t *testing.T) (*types.Node, *types.Node, *types.Node) {
	t.Helper()
	b := f.mustCreate(t, RootRef(), "B1", types.ItemBuilding)
	fl := f.mustCreate(t, NodeParentRef(b.ID), "F1", types.ItemFloor)
	r := f.mustCreate(t, NodeParentRef(fl.ID), "R1", types.ItemRoom)
	return b, fl, r
}

func errCode(t *testing.T, err error) ErrorCode {
	t.Helper()
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	return svcErr.Code
}

func TestCreateProvisionsLinkedEntities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)

	lab, err := f.svc.LabForRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "R1", lab.Name)
	assert.Equal(t, "B1 > F1", lab.Location)

	pc := f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)
	asset, err := f.svc.AssetForNode(ctx, pc.ID)
	require.NoError(t, err)
	assert.Equal(t, "pc-1", asset.HostName)
	assert.Equal(t, types.AssetActive, asset.Status)
	require.NotNil(t, asset.LabID)
	assert.Equal(t, lab.ID, *asset.LabID)
	assert.Equal(t, "tester", asset.UpdatedBy)

	// Structural nodes carry no linked entity.
	_, err = f.svc.LabForRoom(ctx, pc.ID)
	assert.Equal(t, ErrCodeLabNotFound, errCode(t, err))
}

func TestCreateRejectsInvalidHierarchy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	b := f.mustCreate(t, RootRef(), "B1", types.ItemBuilding)
	fl := f.mustCreate(t, NodeParentRef(b.ID), "F1", types.ItemFloor)

	tests := []struct {
		name    string
		parent  ParentRef
		typ     types.ItemType
		message string
	}{
		{"room at root", RootRef(), types.ItemRoom, "a root may only contain: building"},
		{"computer under floor", NodeParentRef(fl.ID), types.ItemComputer, "a floor may only contain: room"},
		{"building under building", NodeParentRef(b.ID), types.ItemBuilding, "a building may only contain: floor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateNode(ctx, &CreateNodeRequest{Parent: tt.parent, Name: "x", Type: tt.typ})
			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, ErrCodeInvalidHierarchy, svcErr.Code)
			assert.Equal(t, tt.message, svcErr.Message)
		})
	}

	// Rejected writes leave nothing behind.
	children, err := f.svc.Children(ctx, NodeParentRef(fl.ID))
	require.NoError(t, err)
	assert.Empty(t, children)

	_, err = f.svc.CreateNode(ctx, &CreateNodeRequest{Parent: NodeParentRef(999), Name: "x", Type: types.ItemFloor})
	assert.Equal(t, ErrCodeParentNotFound, errCode(t, err))
}

func TestChildrenListing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, fl, room := f.buildRoom(t)
	f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)

	children, err := f.svc.Children(ctx, NodeParentRef(fl.ID))
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "R1", children[0].Name)
	assert.True(t, children[0].HasChildren)
	assert.Nil(t, children[0].AssetStatus)

	leaves, err := f.svc.Children(ctx, NodeParentRef(room.ID))
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.False(t, leaves[0].HasChildren)
	require.NotNil(t, leaves[0].AssetStatus)
	assert.Equal(t, types.AssetActive, *leaves[0].AssetStatus)

	_, err = f.svc.Children(ctx, NodeParentRef(999))
	assert.Equal(t, ErrCodeParentNotFound, errCode(t, err))
}

func TestChildrenServedFromCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	b := f.mustCreate(t, RootRef(), "B1", types.ItemBuilding)

	// Warm the cache, then plant a marker to prove hits skip the store.
	_, err := f.svc.Children(ctx, RootRef())
	require.NoError(t, err)
	marker := []cache.ChildSummary{{ID: b.ID, Name: "cached-marker", Type: types.ItemBuilding}}
	require.NoError(t, f.cache.SetChildren(ctx, cache.RootKey, marker))

	got, err := f.svc.Children(ctx, RootRef())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cached-marker", got[0].Name)

	// Any mutation under the same parent drops the entry.
	f.mustCreate(t, RootRef(), "B2", types.ItemBuilding)
	got, err = f.svc.Children(ctx, RootRef())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B1", got[0].Name)
}

func TestCacheTransparency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	b, fl, room := f.buildRoom(t)
	pc := f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)

	// Warm every level, mutate, then compare against a cold read.
	parents := []ParentRef{RootRef(), NodeParentRef(b.ID), NodeParentRef(fl.ID), NodeParentRef(room.ID)}
	for _, p := range parents {
		_, err := f.svc.Children(ctx, p)
		require.NoError(t, err)
	}

	newName := "pc-renamed"
	_, err := f.svc.UpdateNode(ctx, pc.ID, &UpdateNodeRequest{Name: &newName})
	require.NoError(t, err)
	require.NoError(t, f.svc.UpdateAssetStatus(ctx, pc.ID, types.AssetInactive, "ops"))
	f.mustCreate(t, NodeParentRef(room.ID), "srv-1", types.ItemServer)

	for _, p := range parents {
		warm, err := f.svc.Children(ctx, p)
		require.NoError(t, err)
		require.NoError(t, f.cache.Invalidate(ctx, cache.ChildrenKey(p.idPtr())))
		cold, err := f.svc.Children(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, cold, warm, "warm and cold reads must agree for parent %s", p)
	}
}

func TestAncestors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)
	pc := f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)

	chain, err := f.svc.Ancestors(ctx, pc.ID)
	require.NoError(t, err)
	require.Len(t, chain, 4)
	assert.Equal(t, "B1", chain[0].Name)
	assert.Equal(t, "F1", chain[1].Name)
	assert.Equal(t, "R1", chain[2].Name)
	assert.Equal(t, "pc-1", chain[3].Name)

	_, err = f.svc.Ancestors(ctx, 999)
	assert.Equal(t, ErrCodeNodeNotFound, errCode(t, err))
}

func TestUpdateNodePropagatesRenames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)
	pc := f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)

	newName := "Physics Lab"
	_, err := f.svc.UpdateNode(ctx, room.ID, &UpdateNodeRequest{Name: &newName})
	require.NoError(t, err)
	lab, err := f.svc.LabForRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Physics Lab", lab.Name)

	host := "pc-07"
	negX := -3
	node, err := f.svc.UpdateNode(ctx, pc.ID, &UpdateNodeRequest{Name: &host, PositionX: &negX})
	require.NoError(t, err)
	assert.Equal(t, 0, node.PositionX, "positions clamp to the grid")
	asset, err := f.svc.AssetForNode(ctx, pc.ID)
	require.NoError(t, err)
	assert.Equal(t, "pc-07", asset.HostName)

	_, err = f.svc.UpdateNode(ctx, 999, &UpdateNodeRequest{Name: &host})
	assert.Equal(t, ErrCodeNodeNotFound, errCode(t, err))
}

func TestDeleteNode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, fl, room := f.buildRoom(t)
	pc := f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)

	// Direct deletes never cascade.
	err := f.svc.DeleteNode(ctx, room.ID)
	assert.Equal(t, ErrCodeHasChildren, errCode(t, err))

	require.NoError(t, f.svc.DeleteNode(ctx, pc.ID))
	_, err = f.svc.AssetForNode(ctx, pc.ID)
	assert.Equal(t, ErrCodeAssetNotFound, errCode(t, err))

	require.NoError(t, f.svc.DeleteNode(ctx, room.ID))
	_, err = f.svc.LabForRoom(ctx, room.ID)
	assert.Equal(t, ErrCodeLabNotFound, errCode(t, err))

	children, err := f.svc.Children(ctx, NodeParentRef(fl.ID))
	require.NoError(t, err)
	assert.Empty(t, children)

	err = f.svc.DeleteNode(ctx, 999)
	assert.Equal(t, ErrCodeNodeNotFound, errCode(t, err))
}

func TestReconcileCreatesWithTempIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)

	result, err := f.svc.Reconcile(ctx, NodeParentRef(room.ID), []DesiredChild{
		{TempID: "tmp-1", Name: "pc-1", Type: types.ItemComputer, Width: 1, Height: 1},
		{TempID: "tmp-2", Name: "srv-1", Type: types.ItemServer, Width: 2, Height: 2},
	}, "editor")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Deleted)
	require.Len(t, result.NewIDs, 2)
	assert.Equal(t, "tmp-1", result.NewIDs[0].TempID)
	assert.NotZero(t, result.NewIDs[0].NewID)

	// Provisioning runs for reconciled creates too.
	asset, err := f.svc.AssetForNode(ctx, result.NewIDs[0].NewID)
	require.NoError(t, err)
	assert.Equal(t, "pc-1", asset.HostName)
	require.NotNil(t, asset.LabID)
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)
	parent := NodeParentRef(room.ID)

	first, err := f.svc.Reconcile(ctx, parent, []DesiredChild{
		{Name: "pc-1", Type: types.ItemComputer},
		{Name: "pc-2", Type: types.ItemComputer},
	}, "editor")
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)

	desired := make([]DesiredChild, 0, 2)
	children, err := f.svc.Children(ctx, parent)
	require.NoError(t, err)
	for _, c := range children {
		id := c.ID
		desired = append(desired, DesiredChild{ID: &id, Name: c.Name, Type: c.Type, PositionX: c.PositionX, PositionY: c.PositionY, Width: c.Width, Height: c.Height})
	}

	second, err := f.svc.Reconcile(ctx, parent, desired, "editor")
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Deleted)
	assert.Zero(t, second.Recovered)
	assert.Equal(t, 2, second.Updated)

	after, err := f.svc.Children(ctx, parent)
	require.NoError(t, err)
	assert.Equal(t, children, after)
}

func TestReconcileRenamePropagation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)
	pc := f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)

	_, err := f.svc.Reconcile(ctx, NodeParentRef(room.ID), []DesiredChild{
		{ID: &pc.ID, Name: "pc-relabelled", Type: types.ItemComputer, PositionX: 5},
	}, "editor")
	require.NoError(t, err)

	asset, err := f.svc.AssetForNode(ctx, pc.ID)
	require.NoError(t, err)
	assert.Equal(t, "pc-relabelled", asset.HostName)

	node, err := f.db.GetNode(ctx, pc.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, node.PositionX)
}

func TestReconcileCascadeDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	b, fl, room := f.buildRoom(t)
	pc := f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)

	// Omitting F1 at the building level removes the floor, the room,
	// the equipment, and every linked entity underneath.
	result, err := f.svc.Reconcile(ctx, NodeParentRef(b.ID), nil, "editor")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Deleted)

	for _, id := range []int64{fl.ID, room.ID, pc.ID} {
		_, err := f.db.GetNode(ctx, id)
		assert.Error(t, err)
	}
	_, err = f.svc.LabForRoom(ctx, room.ID)
	assert.Equal(t, ErrCodeLabNotFound, errCode(t, err))
	_, err = f.svc.AssetForNode(ctx, pc.ID)
	assert.Equal(t, ErrCodeAssetNotFound, errCode(t, err))
}

func TestReconcileRecoversStaleIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)
	pc := f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)
	staleID := pc.ID
	require.NoError(t, f.svc.DeleteNode(ctx, pc.ID))

	result, err := f.svc.Reconcile(ctx, NodeParentRef(room.ID), []DesiredChild{
		{ID: &staleID, Name: "pc-1", Type: types.ItemComputer},
	}, "editor")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Recovered)
	require.Len(t, result.NewIDs, 1)
	assert.Equal(t, staleID, result.NewIDs[0].OldID)
	assert.NotEqual(t, staleID, result.NewIDs[0].NewID, "recovered items get fresh ids")

	asset, err := f.svc.AssetForNode(ctx, result.NewIDs[0].NewID)
	require.NoError(t, err)
	assert.Equal(t, "pc-1", asset.HostName)
}

func TestReconcileIsAtomic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)
	parent := NodeParentRef(room.ID)

	_, err := f.svc.Reconcile(ctx, parent, []DesiredChild{
		{Name: "pc-1", Type: types.ItemComputer},
		{Name: "oops", Type: types.ItemFloor}, // invalid under a room
	}, "editor")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrCodeInvalidHierarchy, svcErr.Code)
	assert.Equal(t, 1, svcErr.Item, "error points at the failing entry")

	children, err := f.svc.Children(ctx, parent)
	require.NoError(t, err)
	assert.Empty(t, children, "a failed save applies none of its entries")
}

func TestReconcileRejectsTypeChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)
	pc := f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)

	_, err := f.svc.Reconcile(ctx, NodeParentRef(room.ID), []DesiredChild{
		{ID: &pc.ID, Name: "pc-1", Type: types.ItemPrinter},
	}, "editor")
	assert.Equal(t, ErrCodeValidation, errCode(t, err))
}

func TestAssignStaffEnforcesRoleLimits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := memory.New()
	c := cache.NewMemory(time.Minute)
	t.Cleanup(func() { c.Close() })
	svc, err := New(d, c, types.RoleLimits{InstructorLabs: 2, AssistantLabs: 1})
	require.NoError(t, err)

	labIDs := make([]int64, 3)
	for i, name := range []string{"R1", "R2", "R3"} {
		node, err := svc.CreateNode(ctx, &CreateNodeRequest{Parent: RootRef(), Name: "B" + name, Type: types.ItemBuilding})
		require.NoError(t, err)
		floor, err := svc.CreateNode(ctx, &CreateNodeRequest{Parent: NodeParentRef(node.ID), Name: "F1", Type: types.ItemFloor})
		require.NoError(t, err)
		room, err := svc.CreateNode(ctx, &CreateNodeRequest{Parent: NodeParentRef(floor.ID), Name: name, Type: types.ItemRoom})
		require.NoError(t, err)
		lab, err := svc.LabForRoom(ctx, room.ID)
		require.NoError(t, err)
		labIDs[i] = lab.ID
	}

	require.NoError(t, svc.AssignStaff(ctx, labIDs[0], "alice", types.RoleInstructor))
	require.NoError(t, svc.AssignStaff(ctx, labIDs[1], "alice", types.RoleInstructor))

	err = svc.AssignStaff(ctx, labIDs[2], "alice", types.RoleInstructor)
	assert.Equal(t, ErrCodeRoleLimitReached, errCode(t, err))

	// Limits are per role.
	require.NoError(t, svc.AssignStaff(ctx, labIDs[2], "alice", types.RoleAssistant))

	// Releasing a lab frees a slot.
	require.NoError(t, svc.RemoveStaff(ctx, labIDs[0], "alice", types.RoleInstructor))
	require.NoError(t, svc.AssignStaff(ctx, labIDs[2], "alice", types.RoleInstructor))

	staff, err := svc.ListStaff(ctx, labIDs[2])
	require.NoError(t, err)
	assert.Len(t, staff, 2)

	err = svc.AssignStaff(ctx, 999, "bob", types.RoleInstructor)
	assert.Equal(t, ErrCodeLabNotFound, errCode(t, err))
	err = svc.AssignStaff(ctx, labIDs[0], "bob", types.StaffRole("janitor"))
	assert.Equal(t, ErrCodeValidation, errCode(t, err))
}

func TestUpdateLabDetails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)
	lab, err := f.svc.LabForRoom(ctx, room.ID)
	require.NoError(t, err)

	capacity := 40
	dim := "10x8m"
	require.NoError(t, f.svc.UpdateLabDetails(ctx, lab.ID, &LabDetailsRequest{Capacity: &capacity, Dimension: &dim}))

	lab, err = f.svc.LabForRoom(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, lab.Capacity)
	assert.Equal(t, 40, *lab.Capacity)

	err = f.svc.UpdateLabDetails(ctx, lab.ID, &LabDetailsRequest{})
	assert.Equal(t, ErrCodeValidation, errCode(t, err))

	err = f.svc.UpdateLabDetails(ctx, 999, &LabDetailsRequest{Capacity: &capacity})
	assert.Equal(t, ErrCodeLabNotFound, errCode(t, err))
}

func TestUpdateAssetStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)
	pc := f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)

	require.NoError(t, f.svc.UpdateAssetStatus(ctx, pc.ID, types.AssetNonFunctional, "ops"))
	asset, err := f.svc.AssetForNode(ctx, pc.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AssetNonFunctional, asset.Status)
	assert.Equal(t, "ops", asset.UpdatedBy)

	// The cached parent listing reflects the new status.
	children, err := f.svc.Children(ctx, NodeParentRef(room.ID))
	require.NoError(t, err)
	require.NotNil(t, children[0].AssetStatus)
	assert.Equal(t, types.AssetNonFunctional, *children[0].AssetStatus)

	err = f.svc.UpdateAssetStatus(ctx, pc.ID, types.AssetStatus("broken"), "ops")
	assert.Equal(t, ErrCodeValidation, errCode(t, err))

	err = f.svc.UpdateAssetStatus(ctx, room.ID, types.AssetActive, "ops")
	assert.Equal(t, ErrCodeAssetNotFound, errCode(t, err))
}

func TestNodeByUUID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	b := f.mustCreate(t, RootRef(), "B1", types.ItemBuilding)

	got, err := f.svc.NodeByUUID(ctx, b.UUID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.svc.NodeByUUID(ctx, uuid.New())
	assert.Equal(t, ErrCodeNodeNotFound, errCode(t, err))
}

func TestAssetsForLab(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, _, room := f.buildRoom(t)
	f.mustCreate(t, NodeParentRef(room.ID), "pc-1", types.ItemComputer)
	f.mustCreate(t, NodeParentRef(room.ID), "pc-2", types.ItemComputer)

	lab, err := f.svc.LabForRoom(ctx, room.ID)
	require.NoError(t, err)

	assets, err := f.svc.AssetsForLab(ctx, lab.ID)
	require.NoError(t, err)
	assert.Len(t, assets, 2)

	_, err = f.svc.AssetsForLab(ctx, 999)
	assert.Equal(t, ErrCodeLabNotFound, errCode(t, err))
}

func TestParseParentRef(t *testing.T) {
	t.Parallel()

	ref, err := ParseParentRef("root")
	require.NoError(t, err)
	assert.True(t, ref.Root)

	ref, err = ParseParentRef("")
	require.NoError(t, err)
	assert.True(t, ref.Root)

	ref, err = ParseParentRef("17")
	require.NoError(t, err)
	assert.False(t, ref.Root)
	assert.Equal(t, int64(17), ref.ID)

	for _, bad := range []string{"0", "-3", "abc"} {
		_, err = ParseParentRef(bad)
		var svcErr *Error
		require.True(t, errors.As(err, &svcErr), "input %q", bad)
		assert.Equal(t, ErrCodeValidation, svcErr.Code)
	}
}
