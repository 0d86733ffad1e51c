package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

// Package metrics keeps lightweight operational gauges (system load, order
// throughput) in an embedded time-series store under the workdir.

var (
	mu      sync.RWMutex
	storage tstorage.Storage
	latest  = make(map[string]int64)
)

// InitMetrics opens the embedded metrics store under workdir/metrics
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(7*24*time.Hour),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

// SetGauge records a gauge sample and remembers the latest value
func SetGauge(name string, value int64) {
	mu.Lock()
	latest[name] = value
	s := storage
	mu.Unlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
		},
	})
}

// GetGauge returns the most recent value recorded for a gauge
func GetGauge(name string) int64 {
	mu.RLock()
	defer mu.RUnlock()
	return latest[name]
}

// Range returns the stored samples for a gauge between start and end (unix seconds)
func Range(name string, start, end int64) []*tstorage.DataPoint {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return nil
	}
	points, err := s.Select(name, nil, start, end)
	if err != nil {
		return nil
	}
	return points
}

// Close flushes and closes the metrics store
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
