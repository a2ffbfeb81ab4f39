// Package statement holds one ticker's income, balance sheet and cash-flow
// statements keyed by fiscal quarter, and merges them into a single
// chronologically ordered table.
//
// Everything in this package is a pure in-memory computation: a Store is
// built once from already-decoded documents, read by Merge and the
// selectors, and discarded at the end of the request.
package statement

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriodFormat is returned when a period label is not of the form
// Mon-YY with Mon one of Mar, Jun, Sep or Dec.
var ErrInvalidPeriodFormat = errors.New("invalid period format")

// Month is a fiscal quarter-end month. Its value is the quarter rank (1..4).
type Month int

const (
	Mar Month = iota + 1
	Jun
	Sep
	Dec
)

var monthNames = [...]string{Mar: "Mar", Jun: "Jun", Sep: "Sep", Dec: "Dec"}

func (m Month) String() string {
	if m < Mar || m > Dec {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m]
}

// Calendar returns the calendar month the quarter ends in.
func (m Month) Calendar() time.Month { return time.Month(int(m) * 3) }

// Period identifies a fiscal quarter, e.g. "Dec-15".
//
// The zero value is not a valid period.
type Period struct {
	month Month
	year  int // two-digit year, 0..99
}

// NewPeriod returns the period for month m of two-digit year yy.
func NewPeriod(m Month, yy int) (Period, error) {
	if m < Mar || m > Dec {
		return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriodFormat, int(m))
	}
	if yy < 0 || yy > 99 {
		return Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriodFormat, yy)
	}
	return Period{month: m, year: yy}, nil
}

// MustParsePeriod is like ParsePeriod but panics on error.
func MustParsePeriod(label string) Period {
	p, err := ParsePeriod(label)
	if err != nil {
		panic(err.Error())
	}
	return p
}

// ParsePeriod parses a quarter label such as "Mar-16".
// It is lenient on case and surrounding whitespace: " mar-16 " and "MAR-16"
// both parse to the same Period as "Mar-16".
func ParsePeriod(label string) (Period, error) {
	s := strings.TrimSpace(label)
	mon, yy, ok := strings.Cut(s, "-")
	if !ok {
		return Period{}, fmt.Errorf("%w: %q want Mon-YY", ErrInvalidPeriodFormat, label)
	}
	mon = strings.ToLower(strings.TrimSpace(mon))
	yy = strings.TrimSpace(yy)

	var m Month
	switch mon {
	case "mar":
		m = Mar
	case "jun":
		m = Jun
	case "sep":
		m = Sep
	case "dec":
		m = Dec
	default:
		return Period{}, fmt.Errorf("%w: %q unknown quarter month %q", ErrInvalidPeriodFormat, label, mon)
	}

	if len(yy) != 2 || yy[0] < '0' || yy[0] > '9' || yy[1] < '0' || yy[1] > '9' {
		return Period{}, fmt.Errorf("%w: %q want a two-digit year", ErrInvalidPeriodFormat, label)
	}
	y, _ := strconv.Atoi(yy)
	return Period{month: m, year: y}, nil
}

// Month returns the quarter-end month.
func (p Period) Month() Month { return p.month }

// Year returns the calendar year, e.g. 2016 for "Mar-16".
func (p Period) Year() int { return 2000 + p.year }

// Quarter returns the calendar quarter (1..4).
func (p Period) Quarter() int { return int(p.month) }

// IsZero reports whether p is the zero Period.
func (p Period) IsZero() bool { return p.month == 0 }

// String returns the canonical label, e.g. "Mar-16".
func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s-%02d", p.month, p.year)
}

// Compare returns -1, 0 or +1 depending on whether a is before, equal to, or
// after b. It orders on (year, quarter) and never on the label text:
// "Mar-16" sorts after "Dec-15" even though it is lexicographically smaller.
func Compare(a, b Period) int {
	switch {
	case a.year < b.year:
		return -1
	case a.year > b.year:
		return 1
	case a.month < b.month:
		return -1
	case a.month > b.month:
		return 1
	default:
		return 0
	}
}

// Before reports whether p is strictly before q.
func (p Period) Before(q Period) bool { return Compare(p, q) < 0 }

// After reports whether p is strictly after q.
func (p Period) After(q Period) bool { return Compare(p, q) > 0 }

// Next returns the following quarter.
func (p Period) Next() Period {
	if p.month == Dec {
		return Period{month: Mar, year: (p.year + 1) % 100}
	}
	return Period{month: p.month + 1, year: p.year}
}

// SortPeriods sorts periods in place in chronological order.
func SortPeriods(periods []Period) { slices.SortFunc(periods, Compare) }

// UniquePeriods returns a sorted copy of periods without duplicates.
func UniquePeriods(periods []Period) []Period {
	out := slices.Clone(periods)
	SortPeriods(out)
	return slices.Compact(out)
}

// PeriodsBetween returns every quarter from start to end, both included.
// It returns nil when start is after end.
func PeriodsBetween(start, end Period) []Period {
	var out []Period
	for p := start; Compare(p, end) <= 0; p = p.Next() {
		out = append(out, p)
		if p.month == Dec && p.year == 99 {
			break
		}
	}
	return out
}

// MarshalJSON encodes the period as its canonical label.
func (p Period) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

// UnmarshalJSON decodes a period label.
func (p *Period) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	q, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = q
	return nil
}

// MarshalText lets periods be used as map keys in JSON.
func (p Period) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText parses a period label.
func (p *Period) UnmarshalText(b []byte) error {
	q, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = q
	return nil
}

var _ json.Marshaler = Period{}
var _ json.Unmarshaler = (*Period)(nil)
