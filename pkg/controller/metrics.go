package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	metricReconcileTotal = promauto.With(ctrlmetrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vpagitops",
			Name:      "reconcile_total",
			Help:      "Reconciliation attempts by outcome reason",
		},
		[]string{"outcome"},
	)

	metricCommitsPushed = promauto.With(ctrlmetrics.Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "vpagitops",
			Name:      "commits_pushed_total",
			Help:      "Patch commits pushed to working branches",
		},
	)

	metricPullRequestsCreated = promauto.With(ctrlmetrics.Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "vpagitops",
			Name:      "pull_requests_created_total",
			Help:      "Pull requests opened for recommendation patches",
		},
	)

	metricRecommendedCPUMilli = promauto.With(ctrlmetrics.Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "vpagitops",
			Name:      "recommended_cpu_millicores",
			Help:      "Last rendered CPU request recommendation in millicores",
		},
		[]string{"namespace", "target"},
	)

	metricRecommendedMemoryBytes = promauto.With(ctrlmetrics.Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "vpagitops",
			Name:      "recommended_memory_bytes",
			Help:      "Last rendered memory request recommendation in bytes",
		},
		[]string{"namespace", "target"},
	)
)

// recordRecommendation records the last rendered recommendation for a target.
func recordRecommendation(namespace, target string, cpuMilli, memoryBytes int64) {
	metricRecommendedCPUMilli.WithLabelValues(namespace, target).Set(float64(cpuMilli))
	metricRecommendedMemoryBytes.WithLabelValues(namespace, target).Set(float64(memoryBytes))
}
