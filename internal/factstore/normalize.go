package factstore

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The backend is inconsistent about field casing: the same collection mixes
// product_id with productid, frombranch_id with frombranchid, b_name with
// branch_name, and so on. Records are therefore decoded into loose maps and
// looked up by folded keys (lowercased, underscores stripped).

type record map[string]any

func newRecord(raw map[string]any) record {
	rec := make(record, len(raw))
	for key, val := range raw {
		rec[foldKey(key)] = val
	}
	return rec
}

func foldKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "")
}

// str returns the first present key as a trimmed string.
func (r record) str(keys ...string) string {
	for _, key := range keys {
		val, ok := r[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			return strings.TrimSpace(v)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// intVal returns the first present key as an int, tolerating numeric strings.
func (r record) intVal(keys ...string) int {
	for _, key := range keys {
		val, ok := r[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return int(n)
			}
			if f, err := v.Float64(); err == nil {
				return int(f)
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

// dec returns the first present key as a decimal, defaulting to zero.
func (r record) dec(keys ...string) decimal.Decimal {
	for _, key := range keys {
		val, ok := r[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case json.Number:
			if d, err := decimal.NewFromString(v.String()); err == nil {
				return d
			}
		case string:
			if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
				return d
			}
		}
	}
	return decimal.Zero
}

// timestampLayouts covers the formats observed in backend payloads.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeVal returns the first present key parsed as a UTC instant.
func (r record) timeVal(keys ...string) time.Time {
	for _, key := range keys {
		raw := r.str(key)
		if raw == "" {
			continue
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

// geo parses an optional "lat,lng" location string.
func (r record) geo(keys ...string) (lat, lng float64, ok bool) {
	raw := r.str(keys...)
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
