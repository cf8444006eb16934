package events

import "time"

// MinElapsed guards rate computation against near-zero intervals
const MinElapsed = time.Millisecond

// Meter derives transfer rates from successive byte counts of one task
type Meter struct {
	now      func() time.Time
	last     time.Time
	previous int64
}

// NewMeter starts a meter at zero bytes
func NewMeter(now func() time.Time) *Meter {
	if now == nil {
		now = time.Now
	}
	return &Meter{now: now, last: now()}
}

// Update records downloaded and returns the rate in bytes per second since
// the previous update. A count lower than the previous one means the engine
// moved on to another file, so the meter restarts from zero.
func (m *Meter) Update(downloaded int64) float64 {
	now := m.now()
	elapsed := now.Sub(m.last)
	if elapsed < MinElapsed {
		elapsed = MinElapsed
	}
	if downloaded < m.previous {
		m.previous = 0
	}

	rate := float64(downloaded-m.previous) / elapsed.Seconds()
	m.previous = downloaded
	m.last = now
	return rate
}

// Percent returns floor(downloaded*100/total) clamped to [0, 100].
// ok is false when total is unknown.
func Percent(downloaded, total int64) (percent int, ok bool) {
	if total <= 0 {
		return 0, false
	}
	if downloaded <= 0 {
		return 0, true
	}
	if downloaded >= total {
		return 100, true
	}
	return int(downloaded * 100 / total), true
}
