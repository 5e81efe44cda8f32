package scheduler

import (
	"fmt"
	"time"
)

// clock converts between absolute instants and local calendar fields using
// a fixed UTC offset. It deliberately models no daylight saving: the offset
// is constant for the scheduler's lifetime.
type clock struct {
	loc *time.Location
}

func newClock(offsetMinutes int) clock {
	if offsetMinutes == 0 {
		return clock{loc: time.UTC}
	}
	return clock{loc: time.FixedZone(zoneName(offsetMinutes), offsetMinutes*60)}
}

func zoneName(offsetMinutes int) string {
	sign := "+"
	m := offsetMinutes
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, m/60, m%60)
}

// local returns t expressed in the fixed-offset zone so calendar accessors
// (Date, Clock, Weekday) yield local fields.
func (c clock) local(t time.Time) time.Time {
	return t.In(c.loc)
}

// date assembles an absolute instant from local calendar fields, reversing
// the fixed offset. Out-of-range fields normalize the usual way: month 13
// rolls into January of the next year, day 32 into the next month.
func (c clock) date(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, c.loc)
}
