package ledger

import (
	"slices"

	"dompet/internal/core"
)

// Dated is any record with a point in time and an amount.
type Dated interface {
	RecordDate() core.Date
	RecordAmount() core.Money
}

// Range is an inclusive interval of calendar days. A nil bound is open.
type Range struct {
	From *core.Date
	To   *core.Date
}

// NewRange builds a Range from optional bounds; zero dates are open.
func NewRange(from, to core.Date) Range {
	var r Range
	if !from.IsZero() {
		f := from.StartOfDay()
		r.From = &f
	}
	if !to.IsZero() {
		t := to.StartOfDay()
		r.To = &t
	}
	return r
}

// IsOpen reports whether neither bound is set.
func (r Range) IsOpen() bool {
	return r.From == nil && r.To == nil
}

// Satisfiable is false when From is after To.
func (r Range) Satisfiable() bool {
	if r.From == nil || r.To == nil {
		return true
	}
	return r.From.CompareDay(*r.To) <= 0
}

// Contains reports whether the calendar day of d lies within the range.
// Malformed dates are never contained.
func (r Range) Contains(d core.Date) bool {
	if d.IsZero() {
		return false
	}
	if r.From != nil && d.CompareDay(*r.From) < 0 {
		return false
	}
	if r.To != nil && d.CompareDay(*r.To) > 0 {
		return false
	}
	return true
}

// Filtered is the result of FilterByRange. Skipped counts records whose
// date was malformed and therefore could not be placed in the range. An
// open range keeps those records but still counts them.
type Filtered[T Dated] struct {
	Records []T
	Skipped int
}

// Total sums the amounts of the filtered records.
func (f Filtered[T]) Total() core.Money {
	return SumAmounts(f.Records)
}

// FilterByRange keeps records whose calendar day lies within r, both ends
// inclusive. An open range returns the input unchanged. An unsatisfiable
// range returns no records.
func FilterByRange[T Dated](records []T, r Range) Filtered[T] {
	if r.IsOpen() {
		return Filtered[T]{Records: records, Skipped: CountMalformed(records)}
	}
	out := Filtered[T]{Records: []T{}}
	if !r.Satisfiable() {
		return out
	}
	for _, rec := range records {
		d := rec.RecordDate()
		if d.IsZero() {
			out.Skipped++
			continue
		}
		if r.Contains(d) {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// CountMalformed counts records whose date could not be parsed.
func CountMalformed[T Dated](records []T) int {
	n := 0
	for _, rec := range records {
		if rec.RecordDate().IsZero() {
			n++
		}
	}
	return n
}

// SumAmounts totals the amounts of records.
func SumAmounts[T Dated](records []T) core.Money {
	var total core.Money
	for _, rec := range records {
		total = total.Add(rec.RecordAmount())
	}
	return total
}

// IsDayWithRecord scans records once. Use a DayIndex when the same set is
// queried for many days.
func IsDayWithRecord[T Dated](records []T, day core.Date) bool {
	if day.IsZero() {
		return false
	}
	for _, rec := range records {
		d := rec.RecordDate()
		if !d.IsZero() && d.SameDay(day) {
			return true
		}
	}
	return false
}

// EarliestDate returns the earliest calendar day among records, ignoring
// malformed dates. ok is false when no record has a usable date.
func EarliestDate[T Dated](records []T) (earliest core.Date, ok bool) {
	for _, rec := range records {
		d := rec.RecordDate()
		if d.IsZero() {
			continue
		}
		if !ok || d.CompareDay(earliest) < 0 {
			earliest = d.StartOfDay()
			ok = true
		}
	}
	return earliest, ok
}

// DayIndex answers calendar membership queries in constant time. Build it
// once per record snapshot.
type DayIndex struct {
	days    map[string]struct{}
	skipped int
}

// NewDayIndex indexes the calendar days of records.
func NewDayIndex[T Dated](records []T) *DayIndex {
	idx := &DayIndex{days: make(map[string]struct{}, len(records))}
	for _, rec := range records {
		d := rec.RecordDate()
		if d.IsZero() {
			idx.skipped++
			continue
		}
		idx.days[d.DayKey()] = struct{}{}
	}
	return idx
}

// Has reports whether any record falls on the calendar day of day.
func (i *DayIndex) Has(day core.Date) bool {
	if i == nil || day.IsZero() {
		return false
	}
	_, ok := i.days[day.DayKey()]
	return ok
}

// Len is the number of distinct days.
func (i *DayIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.days)
}

// Skipped counts records left out because of a malformed date.
func (i *DayIndex) Skipped() int {
	if i == nil {
		return 0
	}
	return i.skipped
}

// Days returns the indexed days in ascending order.
func (i *DayIndex) Days() []core.Date {
	if i == nil {
		return nil
	}
	keys := make([]string, 0, len(i.days))
	for k := range i.days {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]core.Date, 0, len(keys))
	for _, k := range keys {
		d, err := core.ParseDay(k)
		if err == nil {
			out = append(out, d)
		}
	}
	return out
}

// InMonth returns the highlighted days of a month (1-12) in ascending
// order.
func (i *DayIndex) InMonth(year, month int) []int {
	last := core.NewDate(year, month+1, 0).Day()
	days := []int{}
	for day := 1; day <= last; day++ {
		if i.Has(core.NewDate(year, month, day)) {
			days = append(days, day)
		}
	}
	return days
}
