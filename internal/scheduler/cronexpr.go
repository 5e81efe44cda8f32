package scheduler

import (
	"fmt"

	cronlib "github.com/robfig/cron/v3"
)

// exprParser accepts 5-field and 6-field (leading seconds) cron
// expressions plus field-based descriptors like "@hourly".
var exprParser = cronlib.NewParser(
	cronlib.SecondOptional | cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseExpr converts a standard cron expression into a CronSpec, so YAML
// configs can use crontab syntax instead of raw field sets. "@every"
// descriptors are not field-based and are rejected; use Every for interval
// tasks. Unlike the set-based surface, expressions can fail to parse.
func ParseExpr(expr string) (CronSpec, error) {
	sched, err := exprParser.Parse(expr)
	if err != nil {
		return CronSpec{}, fmt.Errorf("parse cron expr %q: %w", expr, err)
	}
	ss, ok := sched.(*cronlib.SpecSchedule)
	if !ok {
		return CronSpec{}, fmt.Errorf("cron expr %q is not field-based (use an interval schedule instead)", expr)
	}
	return CronSpec{
		Seconds:  bitsToSet(ss.Second, 0, 59),
		Minutes:  bitsToSet(ss.Minute, 0, 59),
		Hours:    bitsToSet(ss.Hour, 0, 23),
		Days:     bitsToSet(ss.Dom, 1, 31),
		Months:   bitsToSet(ss.Month, 1, 12),
		Weekdays: bitsToSet(ss.Dow, 0, 6),
	}, nil
}

// starBit mirrors robfig/cron's internal wildcard marker bit.
const starBit = 1 << 63

// bitsToSet expands a robfig/cron bitmask field into a FieldSet. Wildcards
// (and fields enumerating the entire range, which match identically) map to
// the empty set.
func bitsToSet(bits uint64, lo, hi int) FieldSet {
	if bits&starBit != 0 {
		return nil
	}
	var out FieldSet
	for v := lo; v <= hi; v++ {
		if bits&(uint64(1)<<uint(v)) != 0 {
			out = append(out, v)
		}
	}
	if len(out) == hi-lo+1 {
		return nil
	}
	return out
}
