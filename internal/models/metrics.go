package models

import "time"

// SystemMetrics is a lightweight snapshot shown on the admin dashboard.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	BackendCalls             uint64    `json:"backend_calls"`
	BackendErrors            uint64    `json:"backend_errors"`
	AverageBackendDurationMs float64   `json:"average_backend_duration_ms"`
	Uploads                  uint64    `json:"uploads"`
	EmailsSent               uint64    `json:"emails_sent"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
