package scheduler

import (
	"sort"
	"sync"
	"time"

	logx "tickd/pkg/logx"
)

// Scheduler owns the task registry, the ready queue and the dispatch loop.
// All mutation of registry and queue is serialized by one exclusive lock;
// callbacks run with the lock released.
type Scheduler struct {
	cfg   Config
	log   logx.Logger
	clock clock
	now   func() time.Time

	mu     sync.Mutex
	tasks  map[TaskID]*task
	queue  []*task // active tasks ascending by nextRun; rebuilt on mutation
	lastID TaskID

	running bool
	stopCh  chan struct{}
	wake    chan struct{}
	wg      sync.WaitGroup
}

// Option configures optional Scheduler behavior.
type Option func(*Scheduler)

// WithNow injects the time source used for initial and recomputed next-run
// times. Tests use it together with TestMode for full determinism.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(cfg Config, log logx.Logger, opts ...Option) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Scheduler{
		cfg:   cfg,
		log:   log,
		clock: newClock(cfg.UTCOffsetMinutes),
		now:   time.Now,
		tasks: map[TaskID]*task{},
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the dispatch loop. In test mode no goroutine is spawned;
// TriggerCheck drives ticks instead. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})

	if s.cfg.TestMode {
		s.log.Debug("scheduler started in test mode")
		return
	}

	s.wg.Add(1)
	go s.run(s.stopCh)
	s.log.Info("scheduler started",
		logx.Int("utc_offset_min", s.cfg.UTCOffsetMinutes),
		logx.Int("tasks", len(s.tasks)),
	)
}

// Stop halts the dispatch loop and waits for it to exit. No callback starts
// after Stop returns; one already in flight is allowed to finish. Safe to
// call from any state, repeatedly, including before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// add allocates the next id, computes the initial deadline, inserts the
// record, rebuilds the queue and wakes the loop. It never fails: any spec
// degrades to the calculator's bounded fallback rather than being rejected.
func (s *Scheduler) add(t *task) TaskID {
	s.mu.Lock()
	s.lastID++
	t.id = s.lastID
	t.active = true
	t.nextRun = nextRunAt(t, s.clock, s.now())
	s.tasks[t.id] = t
	s.rebuildQueueLocked()
	s.mu.Unlock()

	s.wakeLoop()
	return t.id
}

// rebuildQueueLocked rebuilds the ready queue from the registry. The queue
// is never patched incrementally: a full rebuild keeps the ordering
// invariant trivially correct on every mutation.
func (s *Scheduler) rebuildQueueLocked() {
	q := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.active {
			q = append(q, t)
		}
	}
	sort.Slice(q, func(i, j int) bool { return q[i].nextRun.Before(q[j].nextRun) })
	s.queue = q
}

// wakeLoop nudges the dispatch loop so a mutation takes effect before the
// current timed wait would have expired. The channel is buffered; a pending
// wake is never lost and never blocks the caller.
func (s *Scheduler) wakeLoop() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// invoke runs one callback, catching panics at the dispatch boundary. A
// failing callback never stops the loop or deactivates its task.
func (s *Scheduler) invoke(id TaskID, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Debug("task callback panicked",
				logx.Uint64("task_id", uint64(id)),
				logx.Any("panic", r),
			)
		}
	}()
	fn()
}
