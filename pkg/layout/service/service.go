// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package service implements the layout tree engine: hierarchy-checked
// node mutations, linked lab/asset provisioning, the cached children
// read path, and the bulk reconciler.
package service

import (
	"context"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/cache"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"

	"github.com/google/uuid"
)

// Service is the layout engine's public surface. All mutations enforce
// the containment hierarchy and keep linked labs and assets consistent
// with their tree nodes.
type Service interface {
	// Children returns the ordered child summaries under parent,
	// served from the subtree cache when warm.
	Children(ctx context.Context, parent ParentRef) ([]cache.ChildSummary, error)

	// Ancestors returns the chain from the top-level ancestor down to
	// the node itself.
	Ancestors(ctx context.Context, nodeID int64) ([]Breadcrumb, error)

	// CreateNode inserts one node and provisions its linked entity.
	CreateNode(ctx context.Context, req *CreateNodeRequest) (*types.Node, error)

	// UpdateNode changes a node's name and position. Renames propagate
	// to the linked lab or asset.
	UpdateNode(ctx context.Context, nodeID int64, req *UpdateNodeRequest) (*types.Node, error)

	// DeleteNode removes a childless node and its linked entity. Nodes
	// with children are rejected with ErrCodeHasChildren.
	DeleteNode(ctx context.Context, nodeID int64) error

	// Reconcile atomically applies a desired child set under parent:
	// updates surviving nodes, creates new ones, and cascade-deletes
	// omitted ones together with their descendants.
	Reconcile(ctx context.Context, parent ParentRef, desired []DesiredChild, actor string) (*ReconcileResult, error)

	// NodeByUUID resolves a node by its stable secondary identifier,
	// the one embedded in printed QR labels.
	NodeByUUID(ctx context.Context, id uuid.UUID) (*types.Node, error)

	// LabForRoom returns the lab provisioned for a room node.
	LabForRoom(ctx context.Context, nodeID int64) (*types.Lab, error)

	// AssetsForLab returns the equipment assets linked to a lab.
	AssetsForLab(ctx context.Context, labID int64) ([]*types.Asset, error)

	// AssetForNode returns the asset provisioned for an equipment node.
	AssetForNode(ctx context.Context, nodeID int64) (*types.Asset, error)

	// UpdateLabDetails changes a lab's descriptive fields.
	UpdateLabDetails(ctx context.Context, labID int64, req *LabDetailsRequest) error

	// AssignStaff adds a user to a lab in the given role, subject to
	// the per-role lab limit.
	AssignStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error

	// RemoveStaff removes a user's role assignment from a lab.
	RemoveStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error

	// ListStaff returns a lab's staff assignments.
	ListStaff(ctx context.Context, labID int64) ([]*types.StaffAssignment, error)

	// UpdateAssetStatus transitions an equipment node's asset status.
	UpdateAssetStatus(ctx context.Context, nodeID int64, status types.AssetStatus, updatedBy string) error
}
