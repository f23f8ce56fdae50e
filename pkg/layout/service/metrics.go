// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ai-Chetan/NexusGrid/pkg/debug"
)

var (
	mutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexusgrid",
		Subsystem: "layout",
		Name:      "mutations_total",
		Help:      "Layout item mutations by operation.",
	}, []string{"op"})

	reconcileTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexusgrid",
		Subsystem: "layout",
		Name:      "reconcile_total",
		Help:      "Bulk layout saves by outcome.",
	}, []string{"result"})

	reconcileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nexusgrid",
		Subsystem: "layout",
		Name:      "reconcile_duration_seconds",
		Help:      "Wall time of successful bulk layout saves.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	debug.Registry().MustRegister(mutationsTotal, reconcileTotal, reconcileDuration)
}
