// Package metrics counts processed files and removed bytes and writes them
// in the Prometheus text format for the node exporter textfile collector.
package metrics

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/simonhull/id3depad/internal/id3v2"
	"github.com/simonhull/id3depad/internal/types"
)

// Result label values for files_processed_total.
const (
	ResultChanged   = "changed"
	ResultUnchanged = "unchanged"
	ResultFailure   = "failure"
)

// Metrics holds the id3depad counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// serializes WriteTextfile
	mu sync.Mutex

	FilesProcessed  *prometheus.CounterVec
	BytesRemoved    *prometheus.CounterVec
	FramesDiscarded prometheus.Counter
	BytesSaved      prometheus.Histogram
}

// New creates the metrics and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FilesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "id3depad",
			Name:      "files_processed_total",
			Help:      "Files processed, by outcome.",
		}, []string{"result"}),
		BytesRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "id3depad",
			Name:      "bytes_removed_total",
			Help:      "Bytes removed from tags, by reason.",
		}, []string{"kind"}),
		FramesDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "id3depad",
			Name:      "frames_discarded_total",
			Help:      "Frames removed because they asked to be discarded.",
		}),
		BytesSaved: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "id3depad",
			Name:      "tag_bytes_saved",
			Help:      "Bytes removed per changed file.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8), // 16B to 256KiB
		}),
	}
}

// Registry returns the registry holding the id3depad metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records the outcome of one file. It is safe for concurrent use.
func (m *Metrics) Observe(_ string, res *id3v2.Result, err error) {
	if err != nil {
		m.FilesProcessed.WithLabelValues(resultLabel(err)).Inc()
		return
	}
	if res == nil || !res.Changed() {
		m.FilesProcessed.WithLabelValues(ResultUnchanged).Inc()
		return
	}

	m.FilesProcessed.WithLabelValues(ResultChanged).Inc()
	for kind, n := range res.Removed {
		if n > 0 {
			m.BytesRemoved.WithLabelValues(kind.String()).Add(float64(n))
		}
	}
	for _, f := range res.Frames {
		if f.Action == id3v2.FrameDiscarded {
			m.FramesDiscarded.Inc()
		}
	}
	m.BytesSaved.Observe(float64(res.RemovedTotal()))
}

// WriteTextfile writes all metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return prometheus.WriteToTextfile(path, m.registry)
}

// resultLabel names tag errors by kind, e.g. "tag_not_found".
func resultLabel(err error) string {
	var tagErr *types.TagError
	if errors.As(err, &tagErr) {
		return strings.ReplaceAll(tagErr.Kind.String(), " ", "_")
	}
	return ResultFailure
}
