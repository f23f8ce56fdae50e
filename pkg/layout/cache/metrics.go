// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"github.com/Ai-Chetan/NexusGrid/pkg/debug"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HitsTotal counts cache hits by backend.
	HitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexusgrid",
		Subsystem: "subtree_cache",
		Name:      "hits_total",
		Help:      "Total subtree cache hits",
	}, []string{"backend"})

	// MissesTotal counts cache misses by backend.
	MissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexusgrid",
		Subsystem: "subtree_cache",
		Name:      "misses_total",
		Help:      "Total subtree cache misses",
	}, []string{"backend"})

	// ErrorsTotal counts backend errors that degraded to misses.
	ErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexusgrid",
		Subsystem: "subtree_cache",
		Name:      "errors_total",
		Help:      "Total subtree cache backend errors",
	}, []string{"backend"})
)

func init() {
	debug.Registry().MustRegister(
		HitsTotal,
		MissesTotal,
		ErrorsTotal,
	)
}
