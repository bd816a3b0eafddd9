package core

import (
	"errors"
	"testing"
	"time"
)

func TestStartOfDayIgnoresTimeAndZone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	late := DateOf(time.Date(2024, 1, 2, 23, 59, 0, 0, jakarta))
	early := DateOf(time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC))

	if !late.SameDay(early) {
		t.Fatalf("expected same calendar day: %v vs %v", late, early)
	}
	if got := late.StartOfDay(); !got.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("StartOfDay = %v", got)
	}
	if late.DayKey() != "2024-01-02" {
		t.Fatalf("DayKey = %s", late.DayKey())
	}
	if NewDate(2024, 1, 1).CompareDay(early) != -1 {
		t.Fatal("expected 2024-01-01 before 2024-01-02")
	}
}

func TestParseRecordDate(t *testing.T) {
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	ref := time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
	}{
		{"time value", ref},
		{"time pointer", &ref},
		{"date", DateOf(ref)},
		{"rfc3339", "2024-01-05T08:30:00Z"},
		{"day only", "2024-01-05"},
		{"space layout", "2024-01-05 08:30:00"},
		{"timestamp", Timestamp{Seconds: ref.Unix()}},
		{"timestamp map", map[string]any{"seconds": float64(ref.Unix()), "nanoseconds": float64(0)}},
		{"underscore map", map[string]any{"_seconds": float64(ref.Unix())}},
		{"unix seconds", ref.Unix()},
		{"unix float", float64(ref.Unix())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecordDate(tt.in)
			if err != nil {
				t.Fatalf("ParseRecordDate(%v) error: %v", tt.in, err)
			}
			if !got.StartOfDay().Equal(want) {
				t.Fatalf("got %v, want day %v", got, want)
			}
		})
	}
}

func TestParseRecordDateMalformed(t *testing.T) {
	for _, in := range []any{nil, "", "kemarin", time.Time{}, map[string]any{"nanos": 1}, []byte("x"), (*time.Time)(nil)} {
		got, err := ParseRecordDate(in)
		if !errors.Is(err, ErrMalformedDate) {
			t.Fatalf("ParseRecordDate(%#v) err = %v, want ErrMalformedDate", in, err)
		}
		if !got.IsZero() {
			t.Fatalf("ParseRecordDate(%#v) should return zero date", in)
		}
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-02-29")
	if err != nil || d.Day() != 29 {
		t.Fatalf("ParseDay leap day: %v %v", d, err)
	}
	if _, err := ParseDay("29/02/2024"); !errors.Is(err, ErrMalformedDate) {
		t.Fatalf("expected ErrMalformedDate, got %v", err)
	}
}

func TestDateOfKeepsWallClock(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	local := time.Date(2024, 1, 2, 1, 0, 0, 0, wib)

	got := DateOf(local)
	if got.Location() != time.UTC {
		t.Fatalf("location = %v, want UTC", got.Location())
	}
	if want := time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("DateOf = %v, want %v", got, want)
	}
	if key := (Date{Time: local}).Canonical().DayKey(); key != "2024-01-02" {
		t.Fatalf("Canonical day = %s", key)
	}
	if !DateOf(time.Time{}).IsZero() {
		t.Fatal("zero time should stay zero")
	}

	parsed, err := ParseRecordDate("2024-01-02T01:00:00+07:00")
	if err != nil {
		t.Fatal(err)
	}
	if parsed.DayKey() != "2024-01-02" {
		t.Fatalf("parsed day = %s", parsed.DayKey())
	}
}
