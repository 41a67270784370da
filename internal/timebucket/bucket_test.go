package timebucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyDaily(t *testing.T) {
	ts := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-14", Key(ts, Daily))
}

func TestKeyUsesUTCBoundaries(t *testing.T) {
	// 23:30 in UTC+7 is 16:30 UTC the same day; 02:00 in UTC+7 is the
	// previous UTC day.
	bangkok := time.FixedZone("ICT", 7*3600)

	assert.Equal(t, "2025-03-14", Key(time.Date(2025, 3, 14, 23, 30, 0, 0, bangkok), Daily))
	assert.Equal(t, "2025-03-13", Key(time.Date(2025, 3, 14, 2, 0, 0, 0, bangkok), Daily))
}

func TestKeyWeeklyStartsMonday(t *testing.T) {
	// 2025-01-01 is a Wednesday; its ISO week starts Monday 2024-12-30.
	assert.Equal(t, "2024-12-30", Key(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), Weekly))
	// A Monday maps to itself.
	assert.Equal(t, "2025-01-06", Key(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), Weekly))
	// A Sunday maps back six days.
	assert.Equal(t, "2025-01-06", Key(time.Date(2025, 1, 12, 23, 0, 0, 0, time.UTC), Weekly))
}

func TestKeyMonthlyYearly(t *testing.T) {
	ts := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-11", Key(ts, Monthly))
	assert.Equal(t, "2025", Key(ts, Yearly))
}

func TestParse(t *testing.T) {
	g, err := Parse(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, Weekly, g)

	_, err = Parse("hourly")
	require.Error(t, err)
}

type stamped struct {
	at  time.Time
	qty int
}

func TestBucketByAndSumBy(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 5, d, 10, 0, 0, 0, time.UTC)
	}
	records := []stamped{
		{at: day(3), qty: 2},
		{at: day(1), qty: 5},
		{at: day(3), qty: 1},
		{at: day(9), qty: 4},
	}

	buckets := BucketBy(records, func(s stamped) time.Time { return s.at }, Daily)
	require.Len(t, buckets, 3)
	assert.Len(t, buckets["2025-05-03"], 2)

	sums := SumBy(buckets, func(s stamped) int { return s.qty })
	assert.Equal(t, map[string]int{
		"2025-05-01": 5,
		"2025-05-03": 3,
		"2025-05-09": 4,
	}, sums)

	assert.Equal(t, []string{"2025-05-01", "2025-05-03", "2025-05-09"}, SortedKeys(buckets))
}

func TestBucketBySparse(t *testing.T) {
	buckets := BucketBy([]stamped{}, func(s stamped) time.Time { return s.at }, Daily)
	assert.Empty(t, buckets)
}
