package scheduler

import (
	"sort"
	"strconv"
	"strings"
)

// FieldSet is a sorted, deduplicated set of allowed values for one calendar
// field. An empty (or nil) FieldSet is a wildcard: any value matches.
type FieldSet []int

// Vals builds a FieldSet from arbitrary values (they are copied, sorted and
// deduplicated). Out-of-range values are kept as-is; they simply never
// match, which is handled by the calculator's bounded search.
func Vals(vals ...int) FieldSet {
	if len(vals) == 0 {
		return nil
	}
	out := make(FieldSet, len(vals))
	copy(out, vals)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

// Match reports whether v satisfies this field. Wildcards match anything.
func (f FieldSet) Match(v int) bool {
	if len(f) == 0 {
		return true
	}
	i := sort.SearchInts(f, v)
	return i < len(f) && f[i] == v
}

// next returns the smallest member >= v. ok=false means v is past the last
// member and the caller must wrap to min() and carry into the next-larger
// field. Wildcards answer v itself.
func (f FieldSet) next(v int) (int, bool) {
	if len(f) == 0 {
		return v, true
	}
	i := sort.SearchInts(f, v)
	if i == len(f) {
		return 0, false
	}
	return f[i], true
}

// min returns the smallest member, or def for a wildcard (0 for
// second/minute/hour, 1 for day/month).
func (f FieldSet) min(def int) int {
	if len(f) == 0 {
		return def
	}
	return f[0]
}

// String renders the set as a comma-joined ascending list, or "*" for a
// wildcard.
func (f FieldSet) String() string {
	if len(f) == 0 {
		return "*"
	}
	parts := make([]string, len(f))
	for i, v := range f {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// CronSpec holds the six match sets of a cron task. Field ranges follow
// local calendar conventions: seconds/minutes 0-59, hours 0-23,
// days 1-31, months 1-12, weekdays 0-6 (Sunday = 0). Empty sets are
// wildcards; a CronSpec with all six sets empty fires every second.
//
// Specs are total inputs: they are never validated or rejected. A spec no
// real date satisfies degrades to the calculator's bounded fallback.
type CronSpec struct {
	Seconds  FieldSet
	Minutes  FieldSet
	Hours    FieldSet
	Days     FieldSet
	Months   FieldSet
	Weekdays FieldSet
}

// normalized returns a copy with every field set sorted and deduplicated,
// so hand-built specs behave like ones made through Vals.
func (c CronSpec) normalized() CronSpec {
	return CronSpec{
		Seconds:  Vals(c.Seconds...),
		Minutes:  Vals(c.Minutes...),
		Hours:    Vals(c.Hours...),
		Days:     Vals(c.Days...),
		Months:   Vals(c.Months...),
		Weekdays: Vals(c.Weekdays...),
	}
}

func (c CronSpec) String() string {
	return "cron " + c.Seconds.String() +
		" " + c.Minutes.String() +
		" " + c.Hours.String() +
		" " + c.Days.String() +
		" " + c.Months.String() +
		" " + c.Weekdays.String()
}
