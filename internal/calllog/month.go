package calllog

import "time"

// MonthBucket aggregates call statistics for one calendar month. All fields
// only ever grow as events for the month are folded in.
type MonthBucket struct {
	IncomingCount   int64 `json:"incoming_count"`
	IncomingSeconds int64 `json:"incoming_seconds"`
	OutgoingCount   int64 `json:"outgoing_count"`
	OutgoingSeconds int64 `json:"outgoing_seconds"`
	MissedCount     int64 `json:"missed_count"`
}

// MonthKey formats t's calendar month as a bucket key, e.g. "2012-03".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Aggregate folds events into per-month buckets. Every event is keyed by its
// own month, so the result is independent of input order; a streaming design
// that closes a bucket when the month changes corrupts results under
// unsorted input, which the history query does not rule out. Unknown kinds
// are skipped; a zero duration still counts the call.
func Aggregate(events []Event) map[string]MonthBucket {
	buckets := make(map[string]MonthBucket)
	for _, e := range events {
		key := MonthKey(e.OccurredAt)
		b := buckets[key]

		dur := e.DurationSeconds
		if dur < 0 {
			dur = 0
		}
		switch e.Kind {
		case KindIncoming:
			b.IncomingCount++
			b.IncomingSeconds += dur
		case KindOutgoing:
			b.OutgoingCount++
			b.OutgoingSeconds += dur
		case KindMissed:
			// Missed calls have no duration.
			b.MissedCount++
		default:
			continue
		}
		buckets[key] = b
	}
	return buckets
}

// BucketFor returns the bucket for month, or a zero bucket when the month
// has no events.
func BucketFor(buckets map[string]MonthBucket, month string) MonthBucket {
	return buckets[month]
}

// Totals holds call duration sums split by direction.
type Totals struct {
	IncomingSeconds int64 `json:"incoming_seconds"`
	OutgoingSeconds int64 `json:"outgoing_seconds"`
}

// DurationsSince sums call durations for events at or after cutoff,
// typically the last boot time. Incoming and outgoing are accumulated
// symmetrically.
func DurationsSince(events []Event, cutoff time.Time) Totals {
	var t Totals
	for _, e := range events {
		if e.OccurredAt.Before(cutoff) {
			continue
		}
		dur := e.DurationSeconds
		if dur < 0 {
			dur = 0
		}
		switch e.Kind {
		case KindIncoming:
			t.IncomingSeconds += dur
		case KindOutgoing:
			t.OutgoingSeconds += dur
		}
	}
	return t
}
