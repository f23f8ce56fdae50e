// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/cache"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db/memory"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/service"
	"github.com/Ai-Chetan/NexusGrid/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	c := cache.NewMemory(time.Minute)
	t.Cleanup(func() { c.Close() })
	svc, err := service.New(memory.New(), c, types.DefaultRoleLimits())
	require.NoError(t, err)
	return New(svc)
}

func doJSON(t *testing.T, h *Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-User", "tester")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// createItem posts a node and returns its id.
func createItem(t *testing.T, h *Handler, parentID *int64, name, typ string) int64 {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/layout/items", map[string]any{
		"parent_id": parentID,
		"name":      name,
		"item_type": typ,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[itemResponse](t, rec)
	return resp.ID
}

func TestCreateAndListItems(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	bID := createItem(t, h, nil, "B1", "building")
	fID := createItem(t, h, &bID, "F1", "floor")
	rID := createItem(t, h, &fID, "R1", "room")
	createItem(t, h, &rID, "pc-1", "computer")

	rec := doJSON(t, h, http.MethodGet, "/layout/items?parent_id=root", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decode[struct {
		Items []cache.ChildSummary `json:"items"`
	}](t, rec)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "B1", listing.Items[0].Name)
	assert.True(t, listing.Items[0].HasChildren)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/layout/items?parent_id=%d", rID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing = decode[struct {
		Items []cache.ChildSummary `json:"items"`
	}](t, rec)
	require.Len(t, listing.Items, 1)
	require.NotNil(t, listing.Items[0].AssetStatus)
	assert.Equal(t, types.AssetActive, *listing.Items[0].AssetStatus)
}

func TestCreateItemInvalidHierarchy(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	bID := createItem(t, h, nil, "B1", "building")
	fID := createItem(t, h, &bID, "F1", "floor")

	rec := doJSON(t, h, http.MethodPost, "/layout/items", map[string]any{
		"parent_id": fID,
		"name":      "pc-1",
		"item_type": "computer",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "a floor may only contain: room", resp.Error)
	assert.Equal(t, "invalid_hierarchy", resp.Code)
}

func TestAncestorsEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	bID := createItem(t, h, nil, "B1", "building")
	fID := createItem(t, h, &bID, "F1", "floor")

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/layout/items/%d/ancestors", fID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Ancestors []service.Breadcrumb `json:"ancestors"`
	}](t, rec)
	require.Len(t, resp.Ancestors, 2)
	assert.Equal(t, "B1", resp.Ancestors[0].Name)
	assert.Equal(t, "F1", resp.Ancestors[1].Name)

	rec = doJSON(t, h, http.MethodGet, "/layout/items/999/ancestors", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteItemWithChildrenConflicts(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	bID := createItem(t, h, nil, "B1", "building")
	fID := createItem(t, h, &bID, "F1", "floor")

	rec := doJSON(t, h, http.MethodDelete, fmt.Sprintf("/layout/items/%d", bID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "has_children", resp.Code)

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/layout/items/%d", fID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/layout/items/%d", bID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSaveLayoutEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	bID := createItem(t, h, nil, "B1", "building")
	fID := createItem(t, h, &bID, "F1", "floor")
	rID := createItem(t, h, &fID, "R1", "room")

	rec := doJSON(t, h, http.MethodPost, "/layout/save", map[string]any{
		"parent_id": rID,
		"items": []map[string]any{
			{"temp_id": "tmp-1", "name": "pc-1", "item_type": "computer"},
			{"temp_id": "tmp-2", "name": "srv-1", "item_type": "server"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[service.ReconcileResult](t, rec)
	assert.Equal(t, 2, result.Created)
	require.Len(t, result.NewIDs, 2)
	assert.Equal(t, "tmp-1", result.NewIDs[0].TempID)

	// Saving an invalid batch reports the failing entry index.
	rec = doJSON(t, h, http.MethodPost, "/layout/save", map[string]any{
		"parent_id": rID,
		"items": []map[string]any{
			{"name": "pc-9", "item_type": "computer"},
			{"name": "oops", "item_type": "building"},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[errorResponse](t, rec)
	require.NotNil(t, resp.Item)
	assert.Equal(t, 1, *resp.Item)
}

func TestLabEndpoints(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	bID := createItem(t, h, nil, "B1", "building")
	fID := createItem(t, h, &bID, "F1", "floor")
	rID := createItem(t, h, &fID, "R1", "room")

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/layout/items/%d/lab", rID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lab := decode[labResponse](t, rec)
	assert.Equal(t, "R1", lab.Name)
	assert.Equal(t, "B1 > F1", lab.Location)

	rec = doJSON(t, h, http.MethodPatch, fmt.Sprintf("/labs/%d", lab.ID), map[string]any{"capacity": 25})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/labs/%d/staff", lab.ID), map[string]any{
		"user_id": "alice", "role": "instructor",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/labs/%d/staff", lab.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	staff := decode[struct {
		Staff []map[string]string `json:"staff"`
	}](t, rec)
	require.Len(t, staff.Staff, 1)
	assert.Equal(t, "alice", staff.Staff[0]["user_id"])

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/labs/%d/staff?user_id=alice&role=instructor", lab.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/layout/items/999/lab", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemByUUIDEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	bID := createItem(t, h, nil, "B1", "building")
	rec := doJSON(t, h, http.MethodGet, "/layout/items?parent_id=root", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decode[struct {
		Items []cache.ChildSummary `json:"items"`
	}](t, rec)
	require.Len(t, listing.Items, 1)

	rec = doJSON(t, h, http.MethodGet, "/layout/uuid/"+listing.Items[0].UUID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	item := decode[itemResponse](t, rec)
	assert.Equal(t, bID, item.ID)

	rec = doJSON(t, h, http.MethodGet, "/layout/uuid/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLabAssetsEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	bID := createItem(t, h, nil, "B1", "building")
	fID := createItem(t, h, &bID, "F1", "floor")
	rID := createItem(t, h, &fID, "R1", "room")
	createItem(t, h, &rID, "pc-1", "computer")
	createItem(t, h, &rID, "srv-1", "server")

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/layout/items/%d/lab", rID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lab := decode[labResponse](t, rec)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/labs/%d/assets", lab.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Assets []assetResponse `json:"assets"`
	}](t, rec)
	assert.Len(t, resp.Assets, 2)
}

func TestAssetStatusEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	bID := createItem(t, h, nil, "B1", "building")
	fID := createItem(t, h, &bID, "F1", "floor")
	rID := createItem(t, h, &fID, "R1", "room")
	pcID := createItem(t, h, &rID, "pc-1", "computer")

	rec := doJSON(t, h, http.MethodPatch, fmt.Sprintf("/assets/%d/status", pcID), map[string]any{
		"status": "non-functional",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/layout/items/%d/asset", pcID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	asset := decode[assetResponse](t, rec)
	assert.Equal(t, types.AssetNonFunctional, asset.Status)
	assert.Equal(t, "tester", asset.UpdatedBy, "X-User header attributes the change")

	rec = doJSON(t, h, http.MethodPatch, fmt.Sprintf("/assets/%d/status", pcID), map[string]any{
		"status": "broken",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
