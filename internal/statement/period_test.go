package statement

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		label   string
		want    string
		wantErr bool
	}{
		{"Mar-16", "Mar-16", false},
		{"Dec-15", "Dec-15", false},
		{" mar-16 ", "Mar-16", false},
		{"MAR-16", "Mar-16", false},
		{"sep-09", "Sep-09", false},
		{"Jun - 20", "Jun-20", false},
		{"Feb-16", "", true},
		{"Mar-2016", "", true},
		{"Mar16", "", true},
		{"Mar-1", "", true},
		{"Mar-ab", "", true},
		{"", "", true},
		{"2016-03-31", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			p, err := ParsePeriod(tt.label)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPeriodFormat) {
					t.Fatalf("ParsePeriod(%q) err = %v, want ErrInvalidPeriodFormat", tt.label, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePeriod(%q): %v", tt.label, err)
			}
			if p.String() != tt.want {
				t.Errorf("ParsePeriod(%q) = %s, want %s", tt.label, p, tt.want)
			}
		})
	}
}

func TestParsePeriodCaseInsensitiveEquality(t *testing.T) {
	a := MustParsePeriod(" mar-16 ")
	b := MustParsePeriod("Mar-16")
	if a != b {
		t.Errorf("expected %v == %v", a, b)
	}
	if Compare(a, b) != 0 {
		t.Errorf("Compare = %d, want 0", Compare(a, b))
	}
}

func TestCompareIsChronologicalNotLexical(t *testing.T) {
	dec15 := MustParsePeriod("Dec-15")
	mar16 := MustParsePeriod("Mar-16")

	if Compare(mar16, dec15) != 1 {
		t.Errorf("Compare(Mar-16, Dec-15) = %d, want 1", Compare(mar16, dec15))
	}
	if Compare(dec15, mar16) != -1 {
		t.Errorf("Compare(Dec-15, Mar-16) = %d, want -1", Compare(dec15, mar16))
	}
	if !dec15.Before(mar16) || !mar16.After(dec15) {
		t.Error("Before/After disagree with Compare")
	}

	// "Jun-16" < "Mar-16" as strings.
	jun16 := MustParsePeriod("Jun-16")
	if Compare(jun16, mar16) != 1 {
		t.Errorf("Compare(Jun-16, Mar-16) = %d, want 1", Compare(jun16, mar16))
	}
}

func TestCompareWithinYear(t *testing.T) {
	order := []string{"Mar-20", "Jun-20", "Sep-20", "Dec-20"}
	for i := 1; i < len(order); i++ {
		a, b := MustParsePeriod(order[i-1]), MustParsePeriod(order[i])
		if Compare(a, b) != -1 {
			t.Errorf("Compare(%s, %s) = %d, want -1", a, b, Compare(a, b))
		}
	}
}

func TestUniquePeriods(t *testing.T) {
	in := []Period{
		MustParsePeriod("Sep-23"),
		MustParsePeriod("Mar-16"),
		MustParsePeriod("Mar-16"),
		MustParsePeriod("Dec-15"),
	}
	got := UniquePeriods(in)
	want := []Period{MustParsePeriod("Dec-15"), MustParsePeriod("Mar-16"), MustParsePeriod("Sep-23")}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b Period) bool { return a == b })); diff != "" {
		t.Errorf("UniquePeriods mismatch (-want +got):\n%s", diff)
	}
	if in[0] != MustParsePeriod("Sep-23") {
		t.Error("UniquePeriods modified its input")
	}
}

func TestPeriodNext(t *testing.T) {
	tests := map[string]string{
		"Mar-16": "Jun-16",
		"Sep-16": "Dec-16",
		"Dec-15": "Mar-16",
	}
	for in, want := range tests {
		if got := MustParsePeriod(in).Next().String(); got != want {
			t.Errorf("%s.Next() = %s, want %s", in, got, want)
		}
	}
}

func TestPeriodsBetween(t *testing.T) {
	got := PeriodsBetween(MustParsePeriod("Dec-15"), MustParsePeriod("Sep-16"))
	want := []string{"Dec-15", "Mar-16", "Jun-16", "Sep-16"}
	if len(got) != len(want) {
		t.Fatalf("got %d periods, want %d", len(got), len(want))
	}
	for i, p := range got {
		if p.String() != want[i] {
			t.Errorf("[%d] = %s, want %s", i, p, want[i])
		}
	}
	if PeriodsBetween(MustParsePeriod("Sep-16"), MustParsePeriod("Dec-15")) != nil {
		t.Error("expected nil for reversed bounds")
	}
}

func TestPeriodYearAndQuarter(t *testing.T) {
	p := MustParsePeriod("Sep-23")
	if p.Year() != 2023 {
		t.Errorf("Year() = %d, want 2023", p.Year())
	}
	if p.Quarter() != 3 {
		t.Errorf("Quarter() = %d, want 3", p.Quarter())
	}
	if p.Month() != Sep {
		t.Errorf("Month() = %v, want Sep", p.Month())
	}
	if p.Month().Calendar() != time.September {
		t.Errorf("Calendar() = %v, want September", p.Month().Calendar())
	}
}

func TestPeriodJSON(t *testing.T) {
	p := MustParsePeriod("jun-21")
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"Jun-21"` {
		t.Errorf("Marshal = %s, want \"Jun-21\"", b)
	}

	var q Period
	if err := json.Unmarshal(b, &q); err != nil {
		t.Fatal(err)
	}
	if q != p {
		t.Errorf("round trip = %v, want %v", q, p)
	}
	if err := json.Unmarshal([]byte(`"Feb-21"`), &q); !errors.Is(err, ErrInvalidPeriodFormat) {
		t.Errorf("Unmarshal bad label err = %v", err)
	}

	m := map[Period]int{p: 1}
	b, err = json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"Jun-21":1}` {
		t.Errorf("map key encoding = %s", b)
	}
}

func TestZeroPeriod(t *testing.T) {
	var p Period
	if !p.IsZero() {
		t.Error("zero Period should report IsZero")
	}
	if p.String() != "" {
		t.Errorf("zero Period String() = %q", p.String())
	}
}
