package calllog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func twoMonthEvents() []Event {
	return []Event{
		{Kind: KindIncoming, OccurredAt: day(2012, time.March, 5), DurationSeconds: 30},
		{Kind: KindMissed, OccurredAt: day(2012, time.March, 10), DurationSeconds: 0},
		{Kind: KindOutgoing, OccurredAt: day(2012, time.April, 1), DurationSeconds: 45},
	}
}

func TestAggregate(t *testing.T) {
	buckets := Aggregate(twoMonthEvents())
	require.Len(t, buckets, 2)

	march := buckets["2012-03"]
	assert.Equal(t, int64(1), march.IncomingCount)
	assert.Equal(t, int64(30), march.IncomingSeconds)
	assert.Equal(t, int64(1), march.MissedCount)
	assert.Equal(t, int64(0), march.OutgoingCount)
	assert.Equal(t, int64(0), march.OutgoingSeconds)

	april := buckets["2012-04"]
	assert.Equal(t, int64(1), april.OutgoingCount)
	assert.Equal(t, int64(45), april.OutgoingSeconds)
	assert.Equal(t, int64(0), april.IncomingCount)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	events := []Event{
		{Kind: KindIncoming, OccurredAt: day(2012, time.March, 5), DurationSeconds: 30},
		{Kind: KindOutgoing, OccurredAt: day(2012, time.April, 1), DurationSeconds: 45},
		{Kind: KindIncoming, OccurredAt: day(2012, time.March, 20), DurationSeconds: 60},
		{Kind: KindMissed, OccurredAt: day(2012, time.April, 2), DurationSeconds: 0},
		{Kind: KindOutgoing, OccurredAt: day(2012, time.March, 7), DurationSeconds: 10},
	}

	want := Aggregate(events)

	// Every rotation of the input, including ones where a month's events are
	// non-contiguous, must produce the same mapping.
	for shift := 1; shift < len(events); shift++ {
		rotated := append(append([]Event{}, events[shift:]...), events[:shift]...)
		assert.Equal(t, want, Aggregate(rotated), "rotation by %d", shift)
	}

	reversed := make([]Event, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}
	assert.Equal(t, want, Aggregate(reversed))
}

func TestAggregate_UnknownKindIgnored(t *testing.T) {
	buckets := Aggregate([]Event{
		{Kind: Kind(99), OccurredAt: day(2012, time.March, 5), DurationSeconds: 30},
		{Kind: KindUnknown, OccurredAt: day(2012, time.March, 6), DurationSeconds: 30},
	})
	assert.Empty(t, buckets)
}

func TestAggregate_ZeroDurationStillCounts(t *testing.T) {
	buckets := Aggregate([]Event{
		{Kind: KindIncoming, OccurredAt: day(2012, time.March, 5), DurationSeconds: 0},
	})
	b := buckets["2012-03"]
	assert.Equal(t, int64(1), b.IncomingCount)
	assert.Equal(t, int64(0), b.IncomingSeconds)
}

func TestAggregate_NegativeDurationClamped(t *testing.T) {
	buckets := Aggregate([]Event{
		{Kind: KindOutgoing, OccurredAt: day(2012, time.March, 5), DurationSeconds: -7},
	})
	b := buckets["2012-03"]
	assert.Equal(t, int64(1), b.OutgoingCount)
	assert.Equal(t, int64(0), b.OutgoingSeconds)
}

func TestBucketFor_AbsentMonth(t *testing.T) {
	buckets := Aggregate(twoMonthEvents())
	assert.Equal(t, MonthBucket{}, BucketFor(buckets, "2011-12"))
	assert.Equal(t, MonthBucket{}, BucketFor(nil, "2012-03"))
}

func TestDurationsSince(t *testing.T) {
	cutoff := day(2012, time.March, 8)
	events := []Event{
		{Kind: KindIncoming, OccurredAt: day(2012, time.March, 5), DurationSeconds: 30},  // before cutoff
		{Kind: KindIncoming, OccurredAt: day(2012, time.March, 10), DurationSeconds: 20}, // counted
		{Kind: KindOutgoing, OccurredAt: day(2012, time.April, 1), DurationSeconds: 45},  // counted
		{Kind: KindMissed, OccurredAt: day(2012, time.April, 2), DurationSeconds: 99},    // missed: no duration
	}

	totals := DurationsSince(events, cutoff)
	assert.Equal(t, int64(20), totals.IncomingSeconds)
	assert.Equal(t, int64(45), totals.OutgoingSeconds)
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2012-03", MonthKey(day(2012, time.March, 31)))
	assert.Equal(t, "2012-12", MonthKey(day(2012, time.December, 1)))
}
