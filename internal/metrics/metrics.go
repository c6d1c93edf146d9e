// Package metrics holds the Prometheus collectors of the folio engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "folio"

var (
	// operations counts facade calls.
	// Labels: op (pages, score, layout, delete, edit, expand, ...), status (ok, error)
	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total engine operations by outcome",
	}, []string{"op", "status"})

	// nodesDeleted counts nodes removed by cascading deletion.
	nodesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "nodes_deleted_total",
		Help:      "Total nodes removed by cascading deletion",
	})

	// layoutPages tracks the size of laid-out books.
	layoutPages = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_pages",
		Help:      "Physical pages per laid-out book",
		Buckets:   prometheus.ExponentialBuckets(4, 2, 8),
	})

	// generationDuration measures producer round trips.
	// Labels: status (ok, error)
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of content producer calls",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"status"})
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Operation records one facade call.
func Operation(op string, err error) {
	operations.WithLabelValues(op, status(err)).Inc()
}

// NodesDeleted adds n removed nodes.
func NodesDeleted(n int) {
	nodesDeleted.Add(float64(n))
}

// LayoutPages records the page count of a laid-out book.
func LayoutPages(n int) {
	layoutPages.Observe(float64(n))
}

// Generation records a producer call that started at start.
func Generation(start time.Time, err error) {
	generationDuration.WithLabelValues(status(err)).Observe(time.Since(start).Seconds())
}
