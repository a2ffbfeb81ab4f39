package statement

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidRange is returned when a range starts after it ends.
var ErrInvalidRange = errors.New("invalid period range")

// Calendar is the master list of fiscal quarters the dashboard knows about,
// in chronological order.
type Calendar struct {
	periods []Period
}

// NewCalendar parses the configured period labels. The result is sorted and
// de-duplicated whatever the order of labels.
func NewCalendar(labels []string) (Calendar, error) {
	periods := make([]Period, 0, len(labels))
	var errs []error
	for _, l := range labels {
		p, err := ParsePeriod(l)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		periods = append(periods, p)
	}
	if len(errs) > 0 {
		return Calendar{}, fmt.Errorf("master calendar: %w", errors.Join(errs...))
	}
	return Calendar{periods: UniquePeriods(periods)}, nil
}

// CalendarOf builds a calendar from already parsed periods.
func CalendarOf(periods ...Period) Calendar {
	return Calendar{periods: UniquePeriods(periods)}
}

// Periods returns a copy of the calendar's quarters.
func (c Calendar) Periods() []Period { return slices.Clone(c.periods) }

// Len returns the number of quarters in the calendar.
func (c Calendar) Len() int { return len(c.periods) }

// Contains reports whether p is a known quarter.
func (c Calendar) Contains(p Period) bool {
	_, found := slices.BinarySearchFunc(c.periods, p, Compare)
	return found
}

// First returns the earliest quarter.
func (c Calendar) First() (Period, bool) {
	if len(c.periods) == 0 {
		return Period{}, false
	}
	return c.periods[0], true
}

// Last returns the latest quarter.
func (c Calendar) Last() (Period, bool) {
	if len(c.periods) == 0 {
		return Period{}, false
	}
	return c.periods[len(c.periods)-1], true
}

// Between returns the calendar quarters p with start <= p <= end.
func (c Calendar) Between(start, end Period) []Period {
	lo, _ := slices.BinarySearchFunc(c.periods, start, Compare)
	hi, found := slices.BinarySearchFunc(c.periods, end, Compare)
	if found {
		hi++
	}
	if lo >= hi {
		return []Period{}
	}
	return slices.Clone(c.periods[lo:hi])
}

// Labels returns the canonical labels of the calendar.
func (c Calendar) Labels() []string {
	out := make([]string, len(c.periods))
	for i, p := range c.periods {
		out[i] = p.String()
	}
	return out
}

// LabelError is a requested period label that could not be parsed.
type LabelError struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// Selection is the ordered set of periods to merge, plus what could not be
// honoured.
type Selection struct {
	Periods []Period `json:"periods"`
	// RequestedButMissing holds requested periods the calendar does not list or
	// the store has no data for.
	RequestedButMissing []Period     `json:"requestedButMissing"`
	Invalid             []LabelError `json:"invalidLabels,omitempty"`
}

// SelectRange selects every calendar quarter between start and end inclusive.
// store may be nil, in which case data availability is not checked.
func SelectRange(cal Calendar, store *Store, start, end Period) (Selection, error) {
	if Compare(start, end) > 0 {
		return Selection{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}
	sel := Selection{Periods: cal.Between(start, end)}

	var missing []Period
	for _, bound := range []Period{start, end} {
		if !cal.Contains(bound) {
			missing = append(missing, bound)
		}
	}
	if store != nil {
		for _, p := range sel.Periods {
			if !store.Has(p) {
				missing = append(missing, p)
			}
		}
	}
	sel.RequestedButMissing = UniquePeriods(missing)
	return sel, nil
}

// SelectRangeLabels parses both bounds and calls SelectRange.
func SelectRangeLabels(cal Calendar, store *Store, start, end string) (Selection, error) {
	from, err := ParsePeriod(start)
	if err != nil {
		return Selection{}, fmt.Errorf("range start: %w", err)
	}
	to, err := ParsePeriod(end)
	if err != nil {
		return Selection{}, fmt.Errorf("range end: %w", err)
	}
	return SelectRange(cal, store, from, to)
}

// SelectLabels selects an explicit list of period labels.
//
// Labels are parsed one by one; a bad label is recorded in Invalid and does
// not fail the selection. The result is de-duplicated and sorted
// chronologically whatever the order of labels.
func SelectLabels(cal Calendar, store *Store, labels []string) Selection {
	var sel Selection
	var periods []Period
	for _, l := range labels {
		p, err := ParsePeriod(l)
		if err != nil {
			sel.Invalid = append(sel.Invalid, LabelError{Label: l, Reason: err.Error()})
			continue
		}
		periods = append(periods, p)
	}
	sel.Periods = UniquePeriods(periods)

	var missing []Period
	for _, p := range sel.Periods {
		inCalendar := cal.Len() == 0 || cal.Contains(p)
		hasData := store == nil || store.Has(p)
		if !inCalendar || !hasData {
			missing = append(missing, p)
		}
	}
	sel.RequestedButMissing = missing
	return sel
}

// SelectAll selects every calendar quarter, or every quarter present in the
// store when the calendar is empty.
func SelectAll(cal Calendar, store *Store) Selection {
	if cal.Len() == 0 {
		if store == nil {
			return Selection{Periods: []Period{}}
		}
		return Selection{Periods: store.Periods()}
	}
	first, _ := cal.First()
	last, _ := cal.Last()
	sel, _ := SelectRange(cal, store, first, last)
	return sel
}
