package domain

import (
	"fmt"
	"iter"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar month, rendered "YYYY-MM".
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a "YYYY-MM" month token.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// MonthOf returns the month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// After reports whether m is strictly later than o.
func (m Month) After(o Month) bool {
	return o.Before(m)
}

// FirstDay returns midnight UTC on the first day of the month.
func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC on the last day of the month: the first day of
// the next month minus one day.
func (m Month) LastDay() time.Time {
	return m.Next().FirstDay().AddDate(0, 0, -1)
}

// Months yields every month from start to end inclusive in ascending order.
// The sequence is empty when start is after end, and can be ranged over any
// number of times.
func Months(start, end Month) iter.Seq[Month] {
	return func(yield func(Month) bool) {
		for m := start; !m.After(end); m = m.Next() {
			if !yield(m) {
				return
			}
		}
	}
}

// CountMonths returns the number of months Months(start, end) yields.
func CountMonths(start, end Month) int {
	if start.After(end) {
		return 0
	}
	return (end.Year-start.Year)*12 + int(end.Month) - int(start.Month) + 1
}
