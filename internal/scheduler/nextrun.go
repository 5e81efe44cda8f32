package scheduler

import "time"

const (
	// maxCorrections bounds the cron field-advancement search. A spec no
	// real date satisfies (day 31 with month pinned to February) would
	// otherwise cycle between day overflow and month correction forever.
	maxCorrections = 400

	// fallbackHorizon is the next-run offset used when the search does not
	// converge. Bounded termination is preferred over strict correctness
	// for unsatisfiable specs.
	fallbackHorizon = 365 * 24 * time.Hour
)

// nextRunAt computes a task's next firing time strictly after ref. It is
// pure and total: it never fails and does bounded work for any spec.
func nextRunAt(t *task, c clock, ref time.Time) time.Time {
	if t.kind == KindInterval {
		return ref.Add(t.every)
	}
	return nextCron(t.spec, c, ref)
}

// nextCron finds the earliest second after ref whose local calendar fields
// all match spec.
//
// The search tests fields in priority order (second, minute, hour,
// day-of-month, month, weekday). On the first mismatch it corrects only
// that field — advance to the smallest set member >= current+1, or wrap to
// the set minimum and carry into the next-larger field — resets every
// lower-priority field to its minimum, and re-tests from the top. One
// correction per iteration is what guarantees convergence. Weekday
// mismatches advance the day by one, since weekday cannot be set
// independently of the date.
func nextCron(spec CronSpec, c clock, ref time.Time) time.Time {
	lt := c.local(ref.Truncate(time.Second).Add(time.Second))

	for i := 0; i < maxCorrections; i++ {
		year, month, day := lt.Date()
		hour, min, sec := lt.Clock()

		switch {
		case !spec.Seconds.Match(sec):
			if v, ok := spec.Seconds.next(sec + 1); ok {
				lt = c.date(year, month, day, hour, min, v)
			} else {
				lt = c.date(year, month, day, hour, min+1, spec.Seconds.min(0))
			}

		case !spec.Minutes.Match(min):
			if v, ok := spec.Minutes.next(min + 1); ok {
				lt = c.date(year, month, day, hour, v, spec.Seconds.min(0))
			} else {
				lt = c.date(year, month, day, hour+1, spec.Minutes.min(0), spec.Seconds.min(0))
			}

		case !spec.Hours.Match(hour):
			if v, ok := spec.Hours.next(hour + 1); ok {
				lt = c.date(year, month, day, v, spec.Minutes.min(0), spec.Seconds.min(0))
			} else {
				lt = c.date(year, month, day+1, spec.Hours.min(0), spec.Minutes.min(0), spec.Seconds.min(0))
			}

		case !spec.Days.Match(day):
			if v, ok := spec.Days.next(day + 1); ok {
				lt = c.date(year, month, v, spec.Hours.min(0), spec.Minutes.min(0), spec.Seconds.min(0))
			} else {
				lt = c.date(year, month+1, spec.Days.min(1), spec.Hours.min(0), spec.Minutes.min(0), spec.Seconds.min(0))
			}

		case !spec.Months.Match(int(month)):
			if v, ok := spec.Months.next(int(month) + 1); ok {
				lt = c.date(year, time.Month(v), spec.Days.min(1), spec.Hours.min(0), spec.Minutes.min(0), spec.Seconds.min(0))
			} else {
				lt = c.date(year+1, time.Month(spec.Months.min(1)), spec.Days.min(1), spec.Hours.min(0), spec.Minutes.min(0), spec.Seconds.min(0))
			}

		case !spec.Weekdays.Match(int(lt.Weekday())):
			lt = c.date(year, month, day+1, spec.Hours.min(0), spec.Minutes.min(0), spec.Seconds.min(0))

		default:
			return lt
		}
	}

	return ref.Add(fallbackHorizon)
}
