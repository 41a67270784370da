// Package timebucket groups timestamped records into fixed calendar periods.
//
// All timestamps are interpreted as UTC instants and bucketed on UTC
// calendar boundaries. The upstream data mixes local-time and UTC formats,
// so UTC is the single policy applied everywhere.
package timebucket

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Granularity selects the calendar period size for bucketing.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// Parse converts a query-string value into a Granularity.
func Parse(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	}
	return "", fmt.Errorf("unknown bucket granularity %q", s)
}

// Key returns the period key for t at granularity g. Keys of one
// granularity sort lexicographically in chronological order:
//
//	daily   -> 2006-01-02
//	weekly  -> 2006-01-02 (Monday starting the ISO week)
//	monthly -> 2006-01
//	yearly  -> 2006
func Key(t time.Time, g Granularity) string {
	t = t.UTC()
	switch g {
	case Weekly:
		// Back up to Monday, the ISO week start.
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset).Format("2006-01-02")
	case Monthly:
		return t.Format("2006-01")
	case Yearly:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

// BucketBy groups records by the period key of their timestamp. Buckets are
// sparse: only periods with at least one record appear.
func BucketBy[T any](records []T, at func(T) time.Time, g Granularity) map[string][]T {
	buckets := make(map[string][]T)
	for _, rec := range records {
		key := Key(at(rec), g)
		buckets[key] = append(buckets[key], rec)
	}
	return buckets
}

// SumBy reduces each bucket to the sum of a per-record value.
func SumBy[T any](buckets map[string][]T, value func(T) int) map[string]int {
	sums := make(map[string]int, len(buckets))
	for key, recs := range buckets {
		total := 0
		for _, rec := range recs {
			total += value(rec)
		}
		sums[key] = total
	}
	return sums
}

// SortedKeys returns the bucket keys in ascending chronological order.
func SortedKeys[T any](buckets map[string]T) []string {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
