package reliability

import "time"

// rttEstimator tracks the smoothed round-trip time for one peer and derives
// the current retransmission timeout from it. Simplified to the spec's
// stated formula (SRTT ← 7/8·SRTT + 1/8·sample) rather than the fuller
// Jacobson/Karels variance-based RTO the original_source reference uses —
// see the rtt.go entry in DESIGN.md.
type rttEstimator struct {
	smoothed  time.Duration
	hasSample bool
}

// Update folds a new RTT sample into the smoothed estimate, seeding it
// directly on the first sample.
func (r *rttEstimator) Update(sample time.Duration) {
	if !r.hasSample {
		r.smoothed = sample
		r.hasSample = true
		return
	}
	r.smoothed = r.smoothed*7/8 + sample/8
}

// RTO returns the current retransmission timeout, floored at minRTO (a
// Tunables value, configurable per deployment per SPEC_FULL.md §2.1).
func (r *rttEstimator) RTO(minRTO time.Duration) time.Duration {
	rto := 2 * r.smoothed
	if rto < minRTO {
		return minRTO
	}
	return rto
}
