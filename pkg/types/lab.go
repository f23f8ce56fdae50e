// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// StaffRole identifies how a user is attached to a lab.
type StaffRole string

const (
	RoleInstructor StaffRole = "instructor"
	RoleAssistant  StaffRole = "assistant"
)

// RoleLimits bounds how many labs a single user may be assigned to per
// role. Injected into the layout service at startup; not persisted.
type RoleLimits struct {
	InstructorLabs int
	AssistantLabs  int
}

// DefaultRoleLimits returns the stock assignment limits.
func DefaultRoleLimits() RoleLimits {
	return RoleLimits{
		InstructorLabs: 3,
		AssistantLabs:  5,
	}
}

// ForRole returns the limit that applies to the given role.
func (l RoleLimits) ForRole(role StaffRole) int {
	if role == RoleInstructor {
		return l.InstructorLabs
	}
	return l.AssistantLabs
}

// Lab is the operational record attached 1:1 to a room node. It is owned
// by the node's lifecycle: created when the room is created, renamed with
// it, deleted with it.
type Lab struct {
	ID     int64
	ItemID int64

	Name     string // mirrors the room node's name
	Location string // ancestor names root-first, joined with " > "

	Capacity  *int
	Dimension *string
	QuickInfo string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StaffAssignment links a user to a lab in a given role.
type StaffAssignment struct {
	LabID  int64
	UserID string
	Role   StaffRole
}
