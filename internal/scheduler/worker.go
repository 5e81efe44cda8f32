package scheduler

import (
	"sort"
	"time"
)

// run is the dispatch loop. One iteration handles exactly one of: an empty
// queue (wait for work), a cancelled head (lazy cleanup), a due head (fire
// and reschedule), or a future head (timed wait, re-check on any wake).
func (s *Scheduler) run(stopCh <-chan struct{}) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}

		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-stopCh:
				return
			}
		}

		head := s.queue[0]
		if !head.active {
			// Lazy cleanup: cancelled entries are only ever dropped here.
			s.queue = s.queue[1:]
			s.mu.Unlock()
			continue
		}

		now := s.now()
		if head.nextRun.After(now) {
			delay := head.nextRun.Sub(now)
			s.mu.Unlock()

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-s.wake:
				// add/cancel changed the queue; re-evaluate the head.
			case <-stopCh:
				timer.Stop()
				return
			}
			timer.Stop()
			continue
		}

		// Due. Pop, then fire with the lock released so a slow callback
		// never blocks Every/Cron/Cancel/TaskInfo.
		s.queue = s.queue[1:]
		deadline := head.nextRun
		id, cb := head.id, head.callback
		s.mu.Unlock()

		s.invoke(id, cb)

		s.mu.Lock()
		// lastRun records the scheduled deadline, not wall clock, so
		// callback latency never leaks into the schedule.
		head.lastRun = deadline
		head.nextRun = nextRunAt(head, s.clock, s.now())
		s.rebuildQueueLocked()
		s.mu.Unlock()
	}
}

// TriggerCheck synchronously fires every active task whose deadline is at
// or before now, applying the same lastRun/nextRun updates as the dispatch
// loop (callbacks still run with the lock released). It returns the number
// of tasks fired, after every fired callback has completed.
//
// This is the test-mode replacement for the background loop; it also works
// alongside a running loop, but is only meant for deterministic tests.
func (s *Scheduler) TriggerCheck(now time.Time) int {
	type firing struct {
		t        *task
		deadline time.Time
	}

	s.mu.Lock()
	due := make([]firing, 0)
	for _, t := range s.tasks {
		if t.active && !t.nextRun.After(now) {
			due = append(due, firing{t: t, deadline: t.nextRun})
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	s.mu.Unlock()

	for _, f := range due {
		s.invoke(f.t.id, f.t.callback)

		s.mu.Lock()
		f.t.lastRun = f.deadline
		f.t.nextRun = nextRunAt(f.t, s.clock, now)
		s.rebuildQueueLocked()
		s.mu.Unlock()
	}
	return len(due)
}
