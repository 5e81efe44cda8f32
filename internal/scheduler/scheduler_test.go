package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	logx "tickd/pkg/logx"
)

// spy counts callback invocations.
type spy struct {
	mu    sync.Mutex
	count int
}

func (s *spy) Fn() func() {
	return func() {
		s.mu.Lock()
		s.count++
		s.mu.Unlock()
	}
}

func (s *spy) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// newTestScheduler returns a test-mode scheduler pinned to a controllable
// clock. Advancing time = moving *now and calling TriggerCheck.
func newTestScheduler(t *testing.T, offsetMinutes int) (*Scheduler, *time.Time) {
	t.Helper()
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	s := New(
		Config{UTCOffsetMinutes: offsetMinutes, TestMode: true},
		logger(),
		WithNow(func() time.Time { return now }),
	)
	s.Start()
	t.Cleanup(s.Stop)
	return s, &now
}

func TestEveryFiresExactlyOnDeadline(t *testing.T) {
	t.Parallel()
	s, now := newTestScheduler(t, 0)
	t0 := *now

	cb := &spy{}
	id := s.Every(10*time.Second, cb.Fn())

	// Just before the deadline: nothing fires.
	*now = t0.Add(10*time.Second - time.Millisecond)
	if n := s.TriggerCheck(*now); n != 0 || cb.Count() != 0 {
		t.Fatalf("fired before deadline: n=%d count=%d", n, cb.Count())
	}

	// On the deadline: exactly one fire, lastRun records the deadline.
	*now = t0.Add(10 * time.Second)
	if n := s.TriggerCheck(*now); n != 1 || cb.Count() != 1 {
		t.Fatalf("n=%d count=%d, want 1,1", n, cb.Count())
	}
	info, ok := s.TaskInfo(id)
	if !ok {
		t.Fatal("TaskInfo: unknown id")
	}
	if info.LastRun != t0.Add(10*time.Second).Unix() {
		t.Fatalf("LastRun = %d, want %d", info.LastRun, t0.Add(10*time.Second).Unix())
	}

	// Same instant again: the run was consumed, nothing re-fires.
	if n := s.TriggerCheck(*now); n != 0 {
		t.Fatalf("re-fired at same instant: n=%d", n)
	}
}

func TestCronFiresOnMatchingSeconds(t *testing.T) {
	t.Parallel()
	s, now := newTestScheduler(t, 0)
	t0 := *now

	cb := &spy{}
	s.Cron(CronSpec{Seconds: Vals(5, 15)}, cb.Fn())

	var hits []int
	for sec := 1; sec <= 20; sec++ {
		*now = t0.Add(time.Duration(sec) * time.Second)
		if s.TriggerCheck(*now) > 0 {
			hits = append(hits, sec)
		}
	}
	if len(hits) != 2 || hits[0] != 5 || hits[1] != 15 {
		t.Fatalf("fired at %v, want [5 15]", hits)
	}
	if cb.Count() != 2 {
		t.Fatalf("count = %d, want 2", cb.Count())
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t, 0)

	cronID := s.Cron(CronSpec{Seconds: Vals(5, 15)}, func() {})
	intID := s.Every(30*time.Second, func() {})

	info, _ := s.TaskInfo(cronID)
	if info.Schedule != "cron 5,15 * * * * *" {
		t.Fatalf("cron schedule = %q", info.Schedule)
	}
	if info.Type != "Cron" || !info.Active || info.LastRun != 0 {
		t.Fatalf("unexpected info: %+v", info)
	}

	info, _ = s.TaskInfo(intID)
	if info.Schedule != "every 30s" {
		t.Fatalf("interval schedule = %q", info.Schedule)
	}
	if info.Type != "Interval" {
		t.Fatalf("type = %q, want Interval", info.Type)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	t.Parallel()
	s, now := newTestScheduler(t, 0)

	cb := &spy{}
	id := s.Every(time.Second, cb.Fn())

	if !s.Cancel(id) {
		t.Fatal("first Cancel returned false")
	}
	if !s.Cancel(id) {
		t.Fatal("second Cancel returned false; must be idempotent")
	}

	info, ok := s.TaskInfo(id)
	if !ok {
		t.Fatal("cancelled task must stay introspectable")
	}
	if info.Active {
		t.Fatal("task still active after Cancel")
	}

	// A cancelled task never fires again.
	*now = now.Add(time.Minute)
	if n := s.TriggerCheck(*now); n != 0 || cb.Count() != 0 {
		t.Fatalf("cancelled task fired: n=%d count=%d", n, cb.Count())
	}
}

func TestUnknownID(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t, 0)

	if s.Cancel(9999) {
		t.Fatal("Cancel(9999) = true on empty scheduler")
	}
	if _, ok := s.TaskInfo(9999); ok {
		t.Fatal("TaskInfo(9999) = ok on empty scheduler")
	}
}

func TestIDsAreStrictlyIncreasing(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t, 0)

	a := s.Every(time.Second, func() {})
	b := s.Every(time.Second, func() {})
	if a == 0 || b == 0 {
		t.Fatal("ids must never be 0")
	}
	if b <= a {
		t.Fatalf("ids not strictly increasing: %d then %d", a, b)
	}
}

func TestCallbackPanicIsSwallowed(t *testing.T) {
	t.Parallel()
	s, now := newTestScheduler(t, 0)

	id := s.Every(time.Second, func() { panic("boom") })
	after := &spy{}
	s.Every(time.Second, after.Fn())

	*now = now.Add(time.Second)
	if n := s.TriggerCheck(*now); n != 2 {
		t.Fatalf("TriggerCheck = %d, want 2 (panicking task still counts as fired)", n)
	}
	if after.Count() != 1 {
		t.Fatal("a panicking callback must not stop dispatch of other tasks")
	}
	if info, _ := s.TaskInfo(id); !info.Active {
		t.Fatal("panic must not deactivate the task")
	}
}

func TestSnapshotOrderedByID(t *testing.T) {
	t.Parallel()
	s, _ := newTestScheduler(t, 0)

	a := s.Every(time.Second, func() {})
	b := s.Cron(CronSpec{}, func() {})
	s.Cancel(a)

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot len = %d, want 2 (soft delete keeps records)", len(snap))
	}
	if snap[0].ID != a || snap[1].ID != b {
		t.Fatalf("snapshot order = %d,%d, want %d,%d", snap[0].ID, snap[1].ID, a, b)
	}
	if snap[0].Active || !snap[1].Active {
		t.Fatal("active flags wrong in snapshot")
	}
}

func TestStopIdempotentFromAnyState(t *testing.T) {
	t.Parallel()

	s := New(Config{}, logger())
	s.Stop() // never started
	s.Start()
	s.Stop()
	s.Stop() // repeated
}

func TestDispatchLoopFires(t *testing.T) {
	t.Parallel()

	s := New(Config{}, logger())
	var fired atomic.Int64
	s.Every(5*time.Millisecond, func() { fired.Add(1) })
	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the dispatch loop to fire")
		default:
			time.Sleep(2 * time.Millisecond)
		}
	}
}

func TestNoCallbackAfterStop(t *testing.T) {
	t.Parallel()

	s := New(Config{}, logger())
	var fired atomic.Int64
	s.Every(time.Millisecond, func() { fired.Add(1) })
	s.Start()

	deadline := time.After(2 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("never fired")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	s.Stop()
	n := fired.Load()
	time.Sleep(20 * time.Millisecond)
	if fired.Load() != n {
		t.Fatal("callback fired after Stop returned")
	}
}

func TestSlowCallbackDoesNotBlockControlSurface(t *testing.T) {
	t.Parallel()

	s := New(Config{}, logger())

	block := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	s.Every(time.Millisecond, func() {
		once.Do(func() { close(entered) })
		<-block
	})

	other := s.Every(time.Hour, func() {})

	s.Start()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never started")
	}

	// While the callback blocks, the control surface must stay responsive:
	// the lock is released during callback execution.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := s.TaskInfo(other); !ok {
			t.Error("TaskInfo failed for other task")
		}
		if !s.Cancel(other) {
			t.Error("Cancel failed for other task")
		}
		s.Every(time.Hour, func() {})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("control surface blocked by an in-flight callback")
	}

	close(block)
	s.Stop()
}

// logger returns a silent logger for tests.
func logger() logx.Logger { return logx.Nop() }
