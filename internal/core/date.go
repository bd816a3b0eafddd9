package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Date is the canonical point in time used by every ledger record. The
// zero value marks a date that could not be parsed at ingestion.
type Date struct {
	time.Time
}

// Timestamp is the seconds/nanoseconds form document stores use for
// serialized points in time.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// layouts accepted for textual dates, tried in order.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewDate creates a new Date at midnight UTC of the given calendar day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf wraps t, keeping its wall-clock reading but relabelling the zone
// as UTC. A date taken at 01:00 WIB stays on its WIB calendar day in every
// store.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return Date{Time: time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)}
}

// Canonical returns d in the form DateOf produces. Stores call it before
// persisting so every backend reads the same calendar day back.
func (d Date) Canonical() Date {
	return DateOf(d.Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrMalformedDate)
	}
	return nil
}

// IsEmpty returns true if the date is zero (optional dates such as DueDate).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// StartOfDay drops the time of day. The calendar day is read in the
// date's own location and returned as midnight UTC, so two dates on the
// same wall-clock day compare equal regardless of zone.
func (d Date) StartOfDay() Date {
	if d.IsZero() {
		return d
	}
	y, m, day := d.Time.Date()
	return Date{Time: time.Date(y, m, day, 0, 0, 0, 0, time.UTC)}
}

// SameDay compares calendar days, ignoring time of day.
func (d Date) SameDay(o Date) bool {
	return d.StartOfDay().Equal(o.StartOfDay().Time)
}

// CompareDay returns -1, 0 or +1 comparing the calendar days of d and o.
func (d Date) CompareDay(o Date) int {
	return d.StartOfDay().Compare(o.StartOfDay().Time)
}

// DayKey is the YYYY-MM-DD form of the calendar day.
func (d Date) DayKey() string {
	return d.StartOfDay().Format("2006-01-02")
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return DateOf(t), nil
}

// ParseRecordDate normalizes the representations a store may hand back
// (time values, text, unix seconds, seconds/nanoseconds timestamps) into a
// Date. Anything else returns the zero Date and ErrMalformedDate.
func ParseRecordDate(v any) (Date, error) {
	switch val := v.(type) {
	case nil:
		return Date{}, fmt.Errorf("%w: missing value", ErrMalformedDate)
	case Date:
		return checked(val.Time)
	case *Date:
		if val == nil {
			return Date{}, fmt.Errorf("%w: missing value", ErrMalformedDate)
		}
		return checked(val.Time)
	case time.Time:
		return checked(val)
	case *time.Time:
		if val == nil {
			return Date{}, fmt.Errorf("%w: missing value", ErrMalformedDate)
		}
		return checked(*val)
	case Timestamp:
		return checked(time.Unix(val.Seconds, int64(val.Nanoseconds)).UTC())
	case *Timestamp:
		if val == nil {
			return Date{}, fmt.Errorf("%w: missing value", ErrMalformedDate)
		}
		return checked(time.Unix(val.Seconds, int64(val.Nanoseconds)).UTC())
	case int64:
		return checked(time.Unix(val, 0).UTC())
	case int:
		return checked(time.Unix(int64(val), 0).UTC())
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return Date{}, fmt.Errorf("%w: %v", ErrMalformedDate, val)
		}
		sec, frac := math.Modf(val)
		return checked(time.Unix(int64(sec), int64(frac*1e9)).UTC())
	case string:
		return parseText(val)
	case map[string]any:
		return parseTimestampMap(val)
	default:
		return Date{}, fmt.Errorf("%w: unsupported type %T", ErrMalformedDate, v)
	}
}

func parseText(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty string", ErrMalformedDate)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return checked(t)
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return checked(time.Unix(sec, 0).UTC())
	}
	return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
}

func parseTimestampMap(m map[string]any) (Date, error) {
	raw, ok := m["seconds"]
	if !ok {
		raw, ok = m["_seconds"]
	}
	if !ok {
		return Date{}, fmt.Errorf("%w: timestamp without seconds", ErrMalformedDate)
	}
	sec, ok := toInt64(raw)
	if !ok {
		return Date{}, fmt.Errorf("%w: seconds %v", ErrMalformedDate, raw)
	}
	var nanos int64
	if n, ok := m["nanoseconds"]; ok {
		nanos, _ = toInt64(n)
	} else if n, ok := m["_nanoseconds"]; ok {
		nanos, _ = toInt64(n)
	}
	return checked(time.Unix(sec, nanos).UTC())
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func checked(t time.Time) (Date, error) {
	if t.IsZero() {
		return Date{}, fmt.Errorf("%w: zero time", ErrMalformedDate)
	}
	return DateOf(t), nil
}
