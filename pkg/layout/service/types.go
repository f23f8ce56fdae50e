// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"strconv"

	"github.com/Ai-Chetan/NexusGrid/pkg/types"
)

// ParentRef addresses a position in the layout tree: either the
// synthetic root (top-level buildings) or a concrete node.
type ParentRef struct {
	ID   int64
	Root bool
}

// RootRef returns the reference for the synthetic tree root.
func RootRef() ParentRef {
	return ParentRef{Root: true}
}

// NodeParentRef returns the reference for a concrete parent node.
func NodeParentRef(id int64) ParentRef {
	return ParentRef{ID: id}
}

// ParseParentRef parses the wire form of a parent reference: the
// literal "root" or a decimal node id.
func ParseParentRef(s string) (ParentRef, error) {
	if s == "root" || s == "" {
		return RootRef(), nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return ParentRef{}, newError(ErrCodeValidation, "parent must be \"root\" or a positive node id")
	}
	return NodeParentRef(id), nil
}

// idPtr returns the reference as a nullable id, nil meaning root.
func (r ParentRef) idPtr() *int64 {
	if r.Root {
		return nil
	}
	id := r.ID
	return &id
}

// String renders the wire form of the reference.
func (r ParentRef) String() string {
	if r.Root {
		return "root"
	}
	return strconv.FormatInt(r.ID, 10)
}

// CreateNodeRequest carries the input for a single node creation.
type CreateNodeRequest struct {
	Parent    ParentRef
	Name      string
	Type      types.ItemType
	PositionX int
	PositionY int
	Width     int
	Height    int
	// CreatedBy attributes the write for linked-asset bookkeeping.
	CreatedBy string
}

// UpdateNodeRequest carries a partial update; nil fields keep the
// stored value. Type and parent are immutable after creation.
type UpdateNodeRequest struct {
	Name      *string
	PositionX *int
	PositionY *int
	UpdatedBy string
}

// DesiredChild is one entry of the desired state handed to Reconcile.
// Entries with ID set refer to existing nodes; entries without ID are
// new and may carry a client-chosen TempID echoed back in the result.
type DesiredChild struct {
	ID        *int64
	TempID    string
	Name      string
	Type      types.ItemType
	PositionX int
	PositionY int
	Width     int
	Height    int
}

// IDMapping reports the permanent id assigned to a reconcile entry that
// did not exist before the call.
type IDMapping struct {
	TempID string `json:"temp_id,omitempty"`
	OldID  int64  `json:"old_id,omitempty"`
	NewID  int64  `json:"new_id"`
}

// ReconcileResult summarizes the changes applied by one Reconcile call.
// Deleted counts every removed node including cascaded descendants.
type ReconcileResult struct {
	Created   int         `json:"created"`
	Updated   int         `json:"updated"`
	Recovered int         `json:"recovered"`
	Deleted   int         `json:"deleted"`
	NewIDs    []IDMapping `json:"new_ids,omitempty"`
}

// LabDetailsRequest carries a partial update of a lab's descriptive
// fields; nil fields keep the stored value.
type LabDetailsRequest struct {
	Capacity  *int
	Dimension *string
	QuickInfo *string
}

// Breadcrumb is one step of an ancestor chain, root-first.
type Breadcrumb struct {
	ID   int64          `json:"id"`
	Name string         `json:"name"`
	Type types.ItemType `json:"item_type"`
}
