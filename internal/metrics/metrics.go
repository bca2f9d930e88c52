// Package metrics collects per-chunk latencies and computes aggregate
// transfer statistics.
package metrics

import (
	"sort"
	"time"
)

const bytesPerMiB = 1048576

// PerformanceMetrics is the immutable record produced once a transfer
// finishes.
type PerformanceMetrics struct {
	AvgLatencyMs     float64
	BytesTransferred int64
	ChunkLatencies   []float64
	EndTime          time.Time
	P95LatencyMs     float64
	P99LatencyMs     float64
	StartTime        time.Time
	ThroughputMBps   float64
}

// Collector accumulates observations for one transfer. It is not safe for
// concurrent use; callers serialize access per session.
type Collector struct {
	bytes     int64
	latencies []float64
	start     time.Time
}

func NewCollector() *Collector {
	return &Collector{start: time.Now()}
}

func (c *Collector) Record(latencyMs float64) {
	c.latencies = append(c.latencies, latencyMs)
}

func (c *Collector) AddBytes(n int64) {
	c.bytes += n
}

// Finalize computes the transfer record as of now. The collector should be
// discarded afterwards.
func (c *Collector) Finalize() PerformanceMetrics {
	end := time.Now()
	avg, p95, p99 := Percentiles(c.latencies)

	latencies := make([]float64, len(c.latencies))
	copy(latencies, c.latencies)

	return PerformanceMetrics{
		AvgLatencyMs:     avg,
		BytesTransferred: c.bytes,
		ChunkLatencies:   latencies,
		EndTime:          end,
		P95LatencyMs:     p95,
		P99LatencyMs:     p99,
		StartTime:        c.start,
		ThroughputMBps:   Throughput(c.bytes, end.Sub(c.start)),
	}
}

// Percentiles sorts ascending and selects p95/p99 by floor indexing,
// clamped to the last element. An empty input yields all zeros.
func Percentiles(latencies []float64) (avg, p95, p99 float64) {
	n := len(latencies)
	if n == 0 {
		return 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, latencies)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return sum / float64(n), sorted[percentileIndex(0.95, n)], sorted[percentileIndex(0.99, n)]
}

func percentileIndex(p float64, n int) int {
	idx := int(p * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// Throughput reports MB/s over the elapsed time, using binary megabytes.
func Throughput(bytes int64, elapsed time.Duration) float64 {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(bytes) / bytesPerMiB / seconds
}
