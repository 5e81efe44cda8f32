// Package scheduler provides tickd's in-process task scheduler.
//
// # Scheduling models
//
// Two models are supported:
//
//   - Interval tasks fire every fixed duration (Every).
//   - Cron tasks fire when six calendar field sets (second, minute, hour,
//     day-of-month, month, weekday) all match local time (Cron). An empty
//     field set is a wildcard; a spec with all six sets empty fires every
//     second. Standard cron expressions can be converted to field sets via
//     ParseExpr.
//
// Local time is derived from a fixed UTC offset; daylight saving is
// intentionally not modeled.
//
// # Registry and dispatch
//
// Every registered task gets a per-instance monotonic id (never 0, never
// reused). Cancellation is a soft delete: the record stays introspectable
// through TaskInfo and Snapshot for the scheduler's lifetime.
//
// A single background loop dispatches tasks in ascending next-run order.
// Callbacks run with the scheduler lock released, so a slow callback never
// blocks Every/Cron/Cancel/TaskInfo — it only delays the next dispatch on
// the same loop. Callback panics are caught at the dispatch boundary and
// discarded; a failing callback never stops the loop or deactivates its
// task. Missed runs are never replayed: after each fire the next run is
// computed fresh from current time.
//
// # Test mode
//
// Constructing with Config.TestMode disables the background loop;
// TriggerCheck(now) steps time manually and fires due tasks synchronously,
// which makes scheduling behavior testable to the second.
package scheduler
