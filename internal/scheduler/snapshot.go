package scheduler

import "sort"

// Snapshot returns value snapshots of every registered task (cancelled ones
// included), ascending by id.
func (s *Scheduler) Snapshot() []TaskInfo {
	s.mu.Lock()
	out := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.info())
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
