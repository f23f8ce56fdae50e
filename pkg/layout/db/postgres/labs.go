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

const labColumns = `id, item_id, lab_name, location, capacity, dimension, quick_info, created_at, updated_at`

// ============================================================================
// Lab Operations - Store
// ============================================================================

func (s *Store) CreateLab(ctx context.Context, lab *types.Lab) error {
	return createLab(ctx, s, lab)
}

func (s *Store) GetLab(ctx context.Context, id int64) (*types.Lab, error) {
	return getLab(ctx, s, id)
}

func (s *Store) GetLabByItem(ctx context.Context, itemID int64) (*types.Lab, error) {
	return getLabByItem(ctx, s, itemID)
}

func (s *Store) RenameLab(ctx context.Context, itemID int64, name string) error {
	return renameLab(ctx, s, itemID, name)
}

func (s *Store) UpdateLabDetails(ctx context.Context, id int64, capacity *int, dimension *string, quickInfo *string) error {
	return updateLabDetails(ctx, s, id, capacity, dimension, quickInfo)
}

func (s *Store) DeleteLabByItem(ctx context.Context, itemID int64) error {
	return deleteLabByItem(ctx, s, itemID)
}

func (s *Store) AddStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error {
	return addStaff(ctx, s, labID, userID, role)
}

func (s *Store) RemoveStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error {
	return removeStaff(ctx, s, labID, userID, role)
}

func (s *Store) CountStaffLabs(ctx context.Context, userID string, role types.StaffRole) (int64, error) {
	return countStaffLabs(ctx, s, userID, role)
}

func (s *Store) ListStaff(ctx context.Context, labID int64) ([]*types.StaffAssignment, error) {
	return listStaff(ctx, s, labID)
}

// ============================================================================
// Lab Operations - TxStore
// ============================================================================

func (t *TxStore) CreateLab(ctx context.Context, lab *types.Lab) error {
	return createLab(ctx, t, lab)
}

func (t *TxStore) GetLab(ctx context.Context, id int64) (*types.Lab, error) {
	return getLab(ctx, t, id)
}

func (t *TxStore) GetLabByItem(ctx context.Context, itemID int64) (*types.Lab, error) {
	return getLabByItem(ctx, t, itemID)
}

func (t *TxStore) RenameLab(ctx context.Context, itemID int64, name string) error {
	return renameLab(ctx, t, itemID, name)
}

func (t *TxStore) UpdateLabDetails(ctx context.Context, id int64, capacity *int, dimension *string, quickInfo *string) error {
	return updateLabDetails(ctx, t, id, capacity, dimension, quickInfo)
}

func (t *TxStore) DeleteLabByItem(ctx context.Context, itemID int64) error {
	return deleteLabByItem(ctx, t, itemID)
}

func (t *TxStore) AddStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error {
	return addStaff(ctx, t, labID, userID, role)
}

func (t *TxStore) RemoveStaff(ctx context.Context, labID int64, userID string, role types.StaffRole) error {
	return removeStaff(ctx, t, labID, userID, role)
}

func (t *TxStore) CountStaffLabs(ctx context.Context, userID string, role types.StaffRole) (int64, error) {
	return countStaffLabs(ctx, t, userID, role)
}

func (t *TxStore) ListStaff(ctx context.Context, labID int64) ([]*types.StaffAssignment, error) {
	return listStaff(ctx, t, labID)
}

// ============================================================================
// Shared Implementations
// ============================================================================

func createLab(ctx context.Context, q querier, lab *types.Lab) error {
	now := time.Now().UTC()
	lab.CreatedAt = now
	lab.UpdatedAt = now

	err := q.queryRow(ctx, `
		INSERT INTO labs (item_id, lab_name, location, capacity, dimension, quick_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		lab.ItemID,
		lab.Name,
		lab.Location,
		lab.Capacity,
		lab.Dimension,
		lab.QuickInfo,
		lab.CreatedAt,
		lab.UpdatedAt,
	).Scan(&lab.ID)
	if err != nil {
		return fmt.Errorf("create lab: %w", err)
	}
	return nil
}

func getLab(ctx context.Context, q querier, id int64) (*types.Lab, error) {
	row := q.queryRow(ctx, `SELECT `+labColumns+` FROM labs WHERE id = $1`, id)
	return scanLab(row)
}

func getLabByItem(ctx context.Context, q querier, itemID int64) (*types.Lab, error) {
	row := q.queryRow(ctx, `SELECT `+labColumns+` FROM labs WHERE item_id = $1`, itemID)
	return scanLab(row)
}

func renameLab(ctx context.Context, q querier, itemID int64, name string) error {
	result, err := q.exec(ctx, `
		UPDATE labs SET lab_name = $2, updated_at = $3 WHERE item_id = $1
	`, itemID, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("rename lab: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return db.ErrLabNotFound
	}
	return nil
}

func updateLabDetails(ctx context.Context, q querier, id int64, capacity *int, dimension *string, quickInfo *string) error {
	result, err := q.exec(ctx, `
		UPDATE labs
		SET capacity   = COALESCE($2, capacity),
		    dimension  = COALESCE($3, dimension),
		    quick_info = COALESCE($4, quick_info),
		    updated_at = $5
		WHERE id = $1
	`, id, capacity, dimension, quickInfo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update lab details: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return db.ErrLabNotFound
	}
	return nil
}

func deleteLabByItem(ctx context.Context, q querier, itemID int64) error {
	// lab_staff rows go with the lab via ON DELETE CASCADE; assets keep
	// a NULL lab link via ON DELETE SET NULL.
	result, err := q.exec(ctx, `DELETE FROM labs WHERE item_id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete lab: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return db.ErrLabNotFound
	}
	return nil
}

func addStaff(ctx context.Context, q querier, labID int64, userID string, role types.StaffRole) error {
	_, err := q.exec(ctx, `
		INSERT INTO lab_staff (lab_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (lab_id, user_id, role) DO NOTHING
	`, labID, userID, string(role))
	if err != nil {
		return fmt.Errorf("add staff: %w", err)
	}
	return nil
}

func removeStaff(ctx context.Context, q querier, labID int64, userID string, role types.StaffRole) error {
	_, err := q.exec(ctx, `
		DELETE FROM lab_staff WHERE lab_id = $1 AND user_id = $2 AND role = $3
	`, labID, userID, string(role))
	if err != nil {
		return fmt.Errorf("remove staff: %w", err)
	}
	return nil
}

func countStaffLabs(ctx context.Context, q querier, userID string, role types.StaffRole) (int64, error) {
	var count int64
	err := q.queryRow(ctx, `
		SELECT COUNT(*) FROM lab_staff WHERE user_id = $1 AND role = $2
	`, userID, string(role)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count staff labs: %w", err)
	}
	return count, nil
}

func listStaff(ctx context.Context, q querier, labID int64) ([]*types.StaffAssignment, error) {
	rows, err := q.query(ctx, `
		SELECT lab_id, user_id, role FROM lab_staff WHERE lab_id = $1 ORDER BY role, user_id
	`, labID)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var staff []*types.StaffAssignment
	for rows.Next() {
		var a types.StaffAssignment
		var role string
		if err := rows.Scan(&a.LabID, &a.UserID, &role); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		a.Role = types.StaffRole(role)
		staff = append(staff, &a)
	}
	return staff, rows.Err()
}

func scanLab(s scanner) (*types.Lab, error) {
	var lab types.Lab
	var location sql.NullString
	var capacity sql.NullInt64
	var dimension sql.NullString

	err := s.Scan(
		&lab.ID,
		&lab.ItemID,
		&lab.Name,
		&location,
		&capacity,
		&dimension,
		&lab.QuickInfo,
		&lab.CreatedAt,
		&lab.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrLabNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan lab: %w", err)
	}

	lab.Location = location.String
	if capacity.Valid {
		c := int(capacity.Int64)
		lab.Capacity = &c
	}
	if dimension.Valid {
		lab.Dimension = &dimension.String
	}
	return &lab, nil
}
