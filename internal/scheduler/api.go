package scheduler

import "time"

// Every registers a task firing every fixed duration. The first run is
// scheduled one interval from now. Registration never fails; the returned
// id is non-zero and strictly increasing per scheduler instance.
func (s *Scheduler) Every(every time.Duration, callback func()) TaskID {
	return s.add(&task{
		kind:     KindInterval,
		every:    every,
		callback: callback,
	})
}

// Cron registers a calendar task. The spec is a total input: it is never
// validated or rejected, and an unsatisfiable spec degrades to the bounded
// one-year fallback instead of erroring.
func (s *Scheduler) Cron(spec CronSpec, callback func()) TaskID {
	return s.add(&task{
		kind:     KindCron,
		spec:     spec.normalized(),
		callback: callback,
	})
}

// Cancel deactivates a task so it never fires again. It reports false only
// for ids this scheduler never issued; cancelling an already-cancelled task
// returns true (idempotent). The record is kept, so cancelled tasks remain
// visible to TaskInfo. An in-flight callback is not interrupted.
func (s *Scheduler) Cancel(id TaskID) bool {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	t.active = false
	s.rebuildQueueLocked()
	s.mu.Unlock()

	s.wakeLoop()
	return true
}

// TaskInfo returns a value snapshot of one task, or ok=false for an unknown
// id. The snapshot is safe to read without any lock after return.
func (s *Scheduler) TaskInfo(id TaskID) (TaskInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return TaskInfo{}, false
	}
	return t.info(), true
}
