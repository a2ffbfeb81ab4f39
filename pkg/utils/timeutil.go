package utils

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// ToIST converts a time.Time to IST.
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// FormatDateTimeIST formats a time.Time to "2006-01-02 15:04:05 IST".
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02 15:04:05 IST")
}

// FiscalYear returns the Indian fiscal year (April to March) that a quarter
// ending in the given calendar month belongs to, e.g. 2016 for Dec 2015 and
// for Mar 2016.
func FiscalYear(month time.Month, year int) int {
	if month <= time.March {
		return year
	}
	return year + 1
}

// FiscalQuarter returns the quarter number (1..4) of the Indian fiscal year
// for a quarter ending in month: Jun is Q1 and Mar is Q4.
func FiscalQuarter(month time.Month) int {
	return (int(month)+8)%12/3 + 1
}

// FiscalQuarterLabel returns a label like "Q3 FY16" for the quarter ending
// in month of year.
func FiscalQuarterLabel(month time.Month, year int) string {
	return fmt.Sprintf("Q%d FY%02d", FiscalQuarter(month), FiscalYear(month, year)%100)
}
