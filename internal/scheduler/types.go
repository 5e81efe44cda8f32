package scheduler

import (
	"fmt"
	"time"
)

// TaskID identifies a registered task. Ids are allocated per Scheduler
// instance, monotonically from 1, and are never reused. 0 is never a valid
// id, so the zero value is safe as a "no task" marker.
type TaskID uint64

// Kind selects the scheduling model of a task.
type Kind int

const (
	KindInterval Kind = iota
	KindCron
)

func (k Kind) String() string {
	switch k {
	case KindInterval:
		return "Interval"
	case KindCron:
		return "Cron"
	default:
		return "Unknown"
	}
}

// Config controls a Scheduler instance.
type Config struct {
	// UTCOffsetMinutes is the fixed local-time offset applied when matching
	// cron calendar fields. Daylight saving is not modeled.
	UTCOffsetMinutes int

	// TestMode disables the background dispatch loop. Time then advances
	// only through TriggerCheck, which makes tests deterministic.
	TestMode bool
}

// task is the registry record. nextRun and lastRun mutate only inside the
// dispatch loop or TriggerCheck, always under the scheduler lock.
type task struct {
	id       TaskID
	kind     Kind
	every    time.Duration // KindInterval only
	spec     CronSpec      // KindCron only
	callback func()
	active   bool
	lastRun  time.Time // zero until first fire; holds the scheduled deadline
	nextRun  time.Time
}

// TaskInfo is a value snapshot of one task. It stays valid (and safe to
// read) after the scheduler moves on; nothing in it aliases live state.
type TaskInfo struct {
	ID       TaskID
	Type     string // "Interval" | "Cron"
	Active   bool
	Schedule string // human-readable, see describe()
	LastRun  int64  // epoch seconds; 0 = never ran
}

func (t *task) info() TaskInfo {
	info := TaskInfo{
		ID:       t.id,
		Type:     t.kind.String(),
		Active:   t.active,
		Schedule: t.describe(),
	}
	if !t.lastRun.IsZero() {
		info.LastRun = t.lastRun.Unix()
	}
	return info
}

// describe renders the schedule: "every 30s" for intervals,
// "cron 5,15 * * * * *" for cron tasks (second minute hour day month
// weekday, "*" = wildcard).
func (t *task) describe() string {
	if t.kind == KindInterval {
		return fmt.Sprintf("every %ds", int64(t.every/time.Second))
	}
	return t.spec.String()
}
