// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/service"
	"github.com/Ai-Chetan/NexusGrid/pkg/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Item  *int   `json:"item,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeServiceError maps a domain error onto an HTTP response. The
// message is surfaced verbatim so clients can show it to users.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logger.Ctx(r.Context()).Error().Err(err).Msg("unhandled service error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "internal error",
			Code:  "internal",
		})
		return
	}

	resp := errorResponse{
		Error: svcErr.Message,
		Code:  codeString(svcErr.Code),
	}
	if svcErr.Item != service.NoItem {
		item := svcErr.Item
		resp.Item = &item
	}

	status := statusForCode(svcErr.Code)
	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, resp)
}

func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: message,
		Code:  codeString(service.ErrCodeValidation),
	})
}

func statusForCode(code service.ErrorCode) int {
	switch code {
	case service.ErrCodeInvalidHierarchy:
		return http.StatusUnprocessableEntity
	case service.ErrCodeParentNotFound, service.ErrCodeNodeNotFound,
		service.ErrCodeLabNotFound, service.ErrCodeAssetNotFound:
		return http.StatusNotFound
	case service.ErrCodeHasChildren, service.ErrCodeRoleLimitReached:
		return http.StatusConflict
	case service.ErrCodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func codeString(code service.ErrorCode) string {
	switch code {
	case service.ErrCodeInvalidHierarchy:
		return "invalid_hierarchy"
	case service.ErrCodeParentNotFound:
		return "parent_not_found"
	case service.ErrCodeNodeNotFound:
		return "node_not_found"
	case service.ErrCodeLabNotFound:
		return "lab_not_found"
	case service.ErrCodeAssetNotFound:
		return "asset_not_found"
	case service.ErrCodeHasChildren:
		return "has_children"
	case service.ErrCodeRoleLimitReached:
		return "role_limit_reached"
	case service.ErrCodeValidation:
		return "validation"
	case service.ErrCodeReconcileFailed:
		return "reconcile_failed"
	default:
		return "internal"
	}
}
