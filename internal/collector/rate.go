package collector

import (
	"context"
	"time"
)

// UsageFraction is the fraction of elapsed ticks spent busy over a sampling
// window. Valid is false when the counters could not be read or did not
// advance between reads.
type UsageFraction struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// SampleUsage takes two counter reads separated by window and returns the
// busy fraction over that interval. Instantaneous load is not observable
// from cumulative counters, so the fraction over a short window stands in
// for it; window is a tuning knob, smaller is more responsive and larger is
// smoother. Any failure yields an invalid fraction, never an error.
func SampleUsage(ctx context.Context, src CounterSource, window time.Duration) UsageFraction {
	r1, err := src.Read()
	if err != nil {
		return UsageFraction{}
	}

	timer := time.NewTimer(window)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return UsageFraction{}
	}

	r2, err := src.Read()
	if err != nil {
		return UsageFraction{}
	}
	return usageBetween(r1, r2)
}

// usageBetween computes deltaBusy/deltaTotal for two readings. A
// non-advancing or wrapped counter makes the result invalid; OS jitter can
// push the raw quotient slightly outside [0,1], so it is clamped.
func usageBetween(r1, r2 CounterReading) UsageFraction {
	deltaBusy := r2.BusyTicks - r1.BusyTicks
	deltaTotal := (r2.BusyTicks + r2.IdleTicks) - (r1.BusyTicks + r1.IdleTicks)
	if deltaTotal <= 0 {
		return UsageFraction{}
	}

	f := float64(deltaBusy) / float64(deltaTotal)
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return UsageFraction{Value: f, Valid: true}
}
