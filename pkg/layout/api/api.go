// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package api exposes the layout engine over HTTP JSON. Authentication
// and authorization live in front of this service; the caller identity
// arrives pre-resolved in the X-User header.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Ai-Chetan/NexusGrid/pkg/layout/service"
	"github.com/Ai-Chetan/NexusGrid/pkg/logger"
)

// Handler serves the layout HTTP API.
type Handler struct {
	svc service.Service
	mux *http.ServeMux
}

// New creates the API handler and registers its routes.
func New(svc service.Service) *Handler {
	h := &Handler{
		svc: svc,
		mux: http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /layout/items", h.listChildren)
	h.mux.HandleFunc("POST /layout/items", h.createItem)
	h.mux.HandleFunc("GET /layout/items/{id}/ancestors", h.listAncestors)
	h.mux.HandleFunc("PATCH /layout/items/{id}", h.updateItem)
	h.mux.HandleFunc("DELETE /layout/items/{id}", h.deleteItem)
	h.mux.HandleFunc("POST /layout/save", h.saveLayout)
	h.mux.HandleFunc("GET /layout/items/{id}/lab", h.getLab)
	h.mux.HandleFunc("GET /layout/items/{id}/asset", h.getAsset)
	h.mux.HandleFunc("GET /layout/uuid/{uuid}", h.getItemByUUID)

	h.mux.HandleFunc("PATCH /labs/{id}", h.updateLab)
	h.mux.HandleFunc("GET /labs/{id}/assets", h.listLabAssets)
	h.mux.HandleFunc("GET /labs/{id}/staff", h.listStaff)
	h.mux.HandleFunc("POST /labs/{id}/staff", h.assignStaff)
	h.mux.HandleFunc("DELETE /labs/{id}/staff", h.removeStaff)

	h.mux.HandleFunc("PATCH /assets/{id}/status", h.updateAssetStatus)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	h.mux.ServeHTTP(rec, r)

	elapsed := time.Since(start)
	requestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	requestDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())
	logger.Ctx(r.Context()).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("elapsed", elapsed).
		Str("user", actor(r)).
		Msg("request")
}

// actor returns the caller identity resolved by the auth layer in
// front of this service. Empty when the request came in unattributed.
func actor(r *http.Request) string {
	return r.Header.Get("X-User")
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
