package services

import "sync/atomic"

// BookingStats is a point-in-time copy of the scheduler counters.
type BookingStats struct {
	Attempts      int64 `json:"attempts"`
	Committed     int64 `json:"committed"`
	Conflicts     int64 `json:"conflicts"`
	Retries       int64 `json:"retries"`
	StoreFailures int64 `json:"storeFailures"`
	Rejected      int64 `json:"rejected"`
}

type bookingMetrics struct {
	attempts      atomic.Int64
	committed     atomic.Int64
	conflicts     atomic.Int64
	retries       atomic.Int64
	storeFailures atomic.Int64
	rejected      atomic.Int64
}

func (m *bookingMetrics) snapshot() BookingStats {
	return BookingStats{
		Attempts:      m.attempts.Load(),
		Committed:     m.committed.Load(),
		Conflicts:     m.conflicts.Load(),
		Retries:       m.retries.Load(),
		StoreFailures: m.storeFailures.Load(),
		Rejected:      m.rejected.Load(),
	}
}
