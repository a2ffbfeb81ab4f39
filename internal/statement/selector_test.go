package statement

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleCalendar(t *testing.T) Calendar {
	t.Helper()
	cal, err := NewCalendar([]string{"Sep-16", "Dec-15", "Jun-16", "Mar-16", "Dec-15"})
	if err != nil {
		t.Fatal(err)
	}
	return cal
}

func TestNewCalendar(t *testing.T) {
	cal := sampleCalendar(t)
	want := []string{"Dec-15", "Mar-16", "Jun-16", "Sep-16"}
	if diff := cmp.Diff(want, cal.Labels()); diff != "" {
		t.Errorf("calendar mismatch (-want +got):\n%s", diff)
	}

	_, err := NewCalendar([]string{"Dec-15", "Q1-16"})
	if !errors.Is(err, ErrInvalidPeriodFormat) {
		t.Errorf("expected ErrInvalidPeriodFormat, got %v", err)
	}
}

func TestSelectRange(t *testing.T) {
	cal := sampleCalendar(t)
	s := sampleStore()

	tests := []struct {
		name        string
		start, end  string
		wantPeriods []string
		wantMissing []string
	}{
		{"full", "Dec-15", "Sep-16", []string{"Dec-15", "Mar-16", "Jun-16", "Sep-16"}, nil},
		{"single", "Mar-16", "Mar-16", []string{"Mar-16"}, nil},
		{"crosses year boundary", "Dec-15", "Mar-16", []string{"Dec-15", "Mar-16"}, nil},
		{"bounds outside calendar", "Sep-15", "Dec-16", []string{"Dec-15", "Mar-16", "Jun-16", "Sep-16"}, []string{"Sep-15", "Dec-16"}},
		{"nothing in range", "Mar-18", "Jun-18", []string{}, []string{"Mar-18", "Jun-18"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := SelectRange(cal, s, MustParsePeriod(tt.start), MustParsePeriod(tt.end))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(periods(tt.wantPeriods...), sel.Periods, periodCmp); diff != "" {
				t.Errorf("periods mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(periods(tt.wantMissing...), sel.RequestedButMissing, periodCmp, periodSliceCmp); diff != "" {
				t.Errorf("missing mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

var periodSliceCmp = cmp.Comparer(func(a, b []Period) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
})

func TestSelectRangeReversed(t *testing.T) {
	cal := sampleCalendar(t)
	_, err := SelectRange(cal, nil, MustParsePeriod("Mar-16"), MustParsePeriod("Dec-15"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestSelectRangeReportsPeriodsWithoutData(t *testing.T) {
	cal := CalendarOf(periods("Dec-15", "Mar-16", "Jun-16", "Sep-16", "Dec-16")...)
	s := sampleStore()
	sel, err := SelectRange(cal, s, MustParsePeriod("Jun-16"), MustParsePeriod("Dec-16"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(periods("Dec-16"), sel.RequestedButMissing, periodCmp); diff != "" {
		t.Errorf("missing mismatch:\n%s", diff)
	}
}

func TestSelectRangeLabels(t *testing.T) {
	cal := sampleCalendar(t)
	if _, err := SelectRangeLabels(cal, nil, "Dec-15", "Feb-16"); !errors.Is(err, ErrInvalidPeriodFormat) {
		t.Errorf("expected ErrInvalidPeriodFormat, got %v", err)
	}
	sel, err := SelectRangeLabels(cal, nil, "dec-15", " MAR-16")
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Periods) != 2 {
		t.Errorf("Periods = %v", sel.Periods)
	}
}

func TestSelectLabels(t *testing.T) {
	cal := sampleCalendar(t)
	s := sampleStore()

	sel := SelectLabels(cal, s, []string{"Sep-23", "Mar-16", "Mar-16"})
	if diff := cmp.Diff(periods("Mar-16", "Sep-23"), sel.Periods, periodCmp); diff != "" {
		t.Errorf("periods mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(periods("Sep-23"), sel.RequestedButMissing, periodCmp); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
	if len(sel.Invalid) != 0 {
		t.Errorf("unexpected invalid labels: %+v", sel.Invalid)
	}
}

func TestSelectLabelsInvalid(t *testing.T) {
	sel := SelectLabels(Calendar{}, nil, []string{"Dec-15", "bogus", "Jun-2016"})
	if len(sel.Periods) != 1 {
		t.Errorf("Periods = %v", sel.Periods)
	}
	if len(sel.Invalid) != 2 || sel.Invalid[0].Label != "bogus" {
		t.Errorf("Invalid = %+v", sel.Invalid)
	}
	if len(sel.RequestedButMissing) != 0 {
		t.Errorf("empty calendar and nil store should not report missing, got %v", sel.RequestedButMissing)
	}
}

func TestSelectThenMerge(t *testing.T) {
	cal := sampleCalendar(t)
	s := sampleStore()

	sel := SelectLabels(cal, s, []string{"Sep-23", "Mar-16", "Mar-16"})
	m := Merge(s, sel.Periods)
	if diff := cmp.Diff(periods("Mar-16"), m.Periods(), periodCmp); diff != "" {
		t.Errorf("merged periods mismatch:\n%s", diff)
	}
	if diff := cmp.Diff(periods("Sep-23"), m.Unavailable, periodCmp); diff != "" {
		t.Errorf("unavailable mismatch:\n%s", diff)
	}
}

func TestSelectAll(t *testing.T) {
	s := sampleStore()
	sel := SelectAll(Calendar{}, s)
	if diff := cmp.Diff(s.Periods(), sel.Periods, periodCmp); diff != "" {
		t.Errorf("empty calendar should select store periods:\n%s", diff)
	}

	cal := CalendarOf(periods("Mar-16", "Jun-16")...)
	sel = SelectAll(cal, s)
	if diff := cmp.Diff(periods("Mar-16", "Jun-16"), sel.Periods, periodCmp); diff != "" {
		t.Errorf("SelectAll mismatch:\n%s", diff)
	}
}
