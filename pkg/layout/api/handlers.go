// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"net/http"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/cache"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/service"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"

	"github.com/google/uuid"
)

type itemResponse struct {
	ID        int64          `json:"id"`
	UUID      string         `json:"uuid"`
	Name      string         `json:"name"`
	Type      types.ItemType `json:"item_type"`
	ParentID  *int64         `json:"parent_id"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

func toItemResponse(n *types.Node) itemResponse {
	return itemResponse{
		ID:        n.ID,
		UUID:      n.UUID.String(),
		Name:      n.Name,
		Type:      n.Type,
		ParentID:  n.ParentID,
		PositionX: n.PositionX,
		PositionY: n.PositionY,
		Width:     n.Width,
		Height:    n.Height,
		CreatedAt: n.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt: n.UpdatedAt.UTC().Format(timeFormat),
	}
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func (h *Handler) listChildren(w http.ResponseWriter, r *http.Request) {
	parent, err := service.ParseParentRef(r.URL.Query().Get("parent_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items, err := h.svc.Children(r.Context(), parent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []cache.ChildSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) listAncestors(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid item id")
		return
	}
	chain, err := h.svc.Ancestors(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ancestors": chain})
}

type createItemRequest struct {
	ParentID  *int64 `json:"parent_id"`
	Name      string `json:"name"`
	Type      string `json:"item_type"`
	PositionX int    `json:"position_x"`
	PositionY int    `json:"position_y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}

	parent := service.RootRef()
	if req.ParentID != nil {
		parent = service.NodeParentRef(*req.ParentID)
	}
	node, err := h.svc.CreateNode(r.Context(), &service.CreateNodeRequest{
		Parent:    parent,
		Name:      req.Name,
		Type:      types.ItemType(req.Type),
		PositionX: req.PositionX,
		PositionY: req.PositionY,
		Width:     req.Width,
		Height:    req.Height,
		CreatedBy: actor(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(node))
}

type updateItemRequest struct {
	Name      *string `json:"name"`
	PositionX *int    `json:"position_x"`
	PositionY *int    `json:"position_y"`
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid item id")
		return
	}
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	node, err := h.svc.UpdateNode(r.Context(), id, &service.UpdateNodeRequest{
		Name:      req.Name,
		PositionX: req.PositionX,
		PositionY: req.PositionY,
		UpdatedBy: actor(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(node))
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid item id")
		return
	}
	if err := h.svc.DeleteNode(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type saveLayoutRequest struct {
	ParentID *int64            `json:"parent_id"`
	Items    []saveLayoutEntry `json:"items"`
}

type saveLayoutEntry struct {
	ID        *int64 `json:"id"`
	TempID    string `json:"temp_id"`
	Name      string `json:"name"`
	Type      string `json:"item_type"`
	PositionX int    `json:"position_x"`
	PositionY int    `json:"position_y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

func (h *Handler) saveLayout(w http.ResponseWriter, r *http.Request) {
	var req saveLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}

	parent := service.RootRef()
	if req.ParentID != nil {
		parent = service.NodeParentRef(*req.ParentID)
	}
	desired := make([]service.DesiredChild, len(req.Items))
	for i, e := range req.Items {
		desired[i] = service.DesiredChild{
			ID:        e.ID,
			TempID:    e.TempID,
			Name:      e.Name,
			Type:      types.ItemType(e.Type),
			PositionX: e.PositionX,
			PositionY: e.PositionY,
			Width:     e.Width,
			Height:    e.Height,
		}
	}

	result, err := h.svc.Reconcile(r.Context(), parent, desired, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type labResponse struct {
	ID        int64   `json:"id"`
	ItemID    int64   `json:"item_id"`
	Name      string  `json:"lab_name"`
	Location  string  `json:"location"`
	Capacity  *int    `json:"capacity"`
	Dimension *string `json:"dimension"`
	QuickInfo string  `json:"quick_info"`
}

func (h *Handler) getLab(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid item id")
		return
	}
	lab, err := h.svc.LabForRoom(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, labResponse{
		ID:        lab.ID,
		ItemID:    lab.ItemID,
		Name:      lab.Name,
		Location:  lab.Location,
		Capacity:  lab.Capacity,
		Dimension: lab.Dimension,
		QuickInfo: lab.QuickInfo,
	})
}

type assetResponse struct {
	ID        int64             `json:"id"`
	ItemID    int64             `json:"item_id"`
	LabID     *int64            `json:"lab_id"`
	HostName  string            `json:"host_name"`
	Status    types.AssetStatus `json:"status"`
	UpdatedAt string            `json:"updated_at"`
	UpdatedBy string            `json:"updated_by"`
}

func (h *Handler) getAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid item id")
		return
	}
	asset, err := h.svc.AssetForNode(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assetResponse{
		ID:        asset.ID,
		ItemID:    asset.ItemID,
		LabID:     asset.LabID,
		HostName:  asset.HostName,
		Status:    asset.Status,
		UpdatedAt: asset.UpdatedAt.UTC().Format(timeFormat),
		UpdatedBy: asset.UpdatedBy,
	})
}

func (h *Handler) getItemByUUID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("uuid"))
	if err != nil {
		writeValidationError(w, "invalid item uuid")
		return
	}
	node, err := h.svc.NodeByUUID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(node))
}

func (h *Handler) listLabAssets(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid lab id")
		return
	}
	assets, err := h.svc.AssetsForLab(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, assetResponse{
			ID:        a.ID,
			ItemID:    a.ItemID,
			LabID:     a.LabID,
			HostName:  a.HostName,
			Status:    a.Status,
			UpdatedAt: a.UpdatedAt.UTC().Format(timeFormat),
			UpdatedBy: a.UpdatedBy,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": out})
}

type updateLabRequest struct {
	Capacity  *int    `json:"capacity"`
	Dimension *string `json:"dimension"`
	QuickInfo *string `json:"quick_info"`
}

func (h *Handler) updateLab(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid lab id")
		return
	}
	var req updateLabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.svc.UpdateLabDetails(r.Context(), id, &service.LabDetailsRequest{
		Capacity:  req.Capacity,
		Dimension: req.Dimension,
		QuickInfo: req.QuickInfo,
	}); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type staffRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid lab id")
		return
	}
	staff, err := h.svc.ListStaff(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]map[string]string, 0, len(staff))
	for _, s := range staff {
		out = append(out, map[string]string{
			"user_id": s.UserID,
			"role":    string(s.Role),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": out})
}

func (h *Handler) assignStaff(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid lab id")
		return
	}
	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.svc.AssignStaff(r.Context(), id, req.UserID, types.StaffRole(req.Role)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeStaff(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid lab id")
		return
	}
	userID := r.URL.Query().Get("user_id")
	role := r.URL.Query().Get("role")
	if userID == "" || role == "" {
		writeValidationError(w, "user_id and role are required")
		return
	}
	if err := h.svc.RemoveStaff(r.Context(), id, userID, types.StaffRole(role)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateAssetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeValidationError(w, "invalid item id")
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.svc.UpdateAssetStatus(r.Context(), id, types.AssetStatus(req.Status), actor(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
